package domain

import "sort"

// FireSearchRadiusKm is the radius around the query point within which
// incidents and perimeters are requested.
const FireSearchRadiusKm = 50.0

// FireIncident is a currently burning fire with a known location.
type FireIncident struct {
	Name               string     `json:"name"`
	Location           Coordinate `json:"location"`
	SizeAcres          float64    `json:"size_acres"`
	ContainmentPercent *float64   `json:"containment_percent"`
}

// FirePerimeter is a mapped burned area. Only its acreage is used.
type FirePerimeter struct {
	Acres float64 `json:"acres"`
}

// FireReport is what the fire-incident collaborator returns for one search.
type FireReport struct {
	Incidents  []FireIncident
	Perimeters []FirePerimeter
}

// NearestIncident is the active incident closest to the query point.
type NearestIncident struct {
	Name               string   `json:"name"`
	DistanceKm         float64  `json:"distance_km"`
	SizeAcres          float64  `json:"size_acres"`
	ContainmentPercent *float64 `json:"containment_percent"`
}

// FireSummary aggregates fire activity around a location. NearestIncident is
// nil exactly when ActiveCount is zero.
type FireSummary struct {
	ActiveCount      int              `json:"active_count"`
	PerimeterCount   int              `json:"perimeter_count"`
	TotalBurnedAcres float64          `json:"total_burned_acres"`
	NearestIncident  *NearestIncident `json:"nearest_incident"`
}

// EmptyFireSummary is the summary used when fire data is unavailable.
func EmptyFireSummary() FireSummary {
	return FireSummary{}
}

// BuildFireSummary finds the nearest active incident to query and totals the
// perimeter acreage. Perimeters are counted independently of incidents; a
// location can have burn scars and no active fire.
func BuildFireSummary(query Coordinate, report FireReport) FireSummary {
	summary := FireSummary{
		ActiveCount:    len(report.Incidents),
		PerimeterCount: len(report.Perimeters),
	}
	for _, p := range report.Perimeters {
		summary.TotalBurnedAcres += p.Acres
	}

	if len(report.Incidents) == 0 {
		return summary
	}

	ranked := make([]NearestIncident, len(report.Incidents))
	for i, inc := range report.Incidents {
		ranked[i] = NearestIncident{
			Name:               inc.Name,
			DistanceKm:         Distance(query, inc.Location),
			SizeAcres:          inc.SizeAcres,
			ContainmentPercent: inc.ContainmentPercent,
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	nearest := ranked[0]
	summary.NearestIncident = &nearest
	return summary
}
