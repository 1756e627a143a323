package domain

import (
	"context"
	"fmt"
	"strings"
)

// Resolve geocodes a free-text query. A blank query or a provider miss is
// ErrNotFound; a provider failure is ErrUpstreamUnavailable. A match with an
// empty display name falls back to the trimmed query.
func Resolve(ctx context.Context, geocoder Geocoder, query string) (Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Place{}, fmt.Errorf("%w: empty query", ErrNotFound)
	}

	place, found, err := geocoder.Geocode(ctx, query)
	if err != nil {
		return Place{}, fmt.Errorf("%w: geocode %q: %w", ErrUpstreamUnavailable, query, err)
	}
	if !found {
		return Place{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	if err := place.Coordinate.Validate(); err != nil {
		return Place{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	if place.Name == "" {
		place.Name = query
	}
	return place, nil
}
