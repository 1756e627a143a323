package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
)

// DefaultCooldown is how long the generative narrator sits out after an
// upstream failure.
const DefaultCooldown = time.Minute

// Generative writes the narrative with a text-generation model. After a
// transport failure or timeout it reports itself unavailable for the
// cooldown so later requests go straight to the fallback. Malformed replies
// do not trigger the cooldown.
type Generative struct {
	text             domain.TextGenerator
	cooldown         time.Duration
	unavailableUntil atomic.Int64 // unix nanos
	logger           *slog.Logger
}

// NewGenerative creates a Generative narrator. A zero cooldown disables it.
func NewGenerative(text domain.TextGenerator, cooldown time.Duration, logger *slog.Logger) *Generative {
	return &Generative{
		text:     text,
		cooldown: cooldown,
		logger:   logger,
	}
}

// Available reports whether the cooldown has elapsed.
func (g *Generative) Available(_ context.Context) bool {
	return domain.Now().UnixNano() >= g.unavailableUntil.Load()
}

// Narrate sends the prompt and validates the reply. At most one request is
// made per call.
func (g *Generative) Narrate(ctx context.Context, in Input) (domain.Narrative, error) {
	raw, err := g.text.Generate(ctx, BuildPrompt(in))
	if err != nil {
		if errors.Is(err, domain.ErrMalformedResponse) {
			g.logger.Debug("text generation reply unusable", "error", err)
			return domain.Narrative{}, err
		}
		if !errors.Is(ctx.Err(), context.Canceled) {
			g.markUnavailable()
		}
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: text generation: %w", domain.ErrUpstreamUnavailable, err)
		}
		return domain.Narrative{}, err
	}

	n, err := ParseNarrative(raw, in.Score.Level)
	if err != nil {
		g.logger.Debug("text generation reply rejected", "error", err, "reply_bytes", len(raw))
		return domain.Narrative{}, err
	}
	return n, nil
}

func (g *Generative) markUnavailable() {
	if g.cooldown <= 0 {
		return
	}
	until := domain.Now().Add(g.cooldown)
	g.unavailableUntil.Store(until.UnixNano())
	g.logger.Info("generative narrative paused", "until", until)
}
