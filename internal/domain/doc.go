// Package domain models the data behind a wildfire risk assessment and holds
// the pure functions that turn it into a score.
//
// # Data Sources
//
// Weather comes from the Open-Meteo forecast API as hourly arrays. The
// service requests a window of past days plus the current day and trims
// samples that lie in the future, so the last element of every array is the
// most recent observation. Fire activity comes from the NIFC ArcGIS feature
// services: point locations of active incidents and burned-area perimeters,
// both filtered server-side to a fixed search radius.
//
// # Units
//
//	temperature            °C
//	relative humidity      %
//	wind speed, gusts      km/h
//	wind direction         degrees (meteorological, 0 = from north)
//	precipitation          mm per hour
//	soil moisture          m³/m³ (volumetric, 1–3 cm layer)
//	fire size, perimeters  acres
//	distances              km (great-circle, R = 6371 km)
//
// Open-Meteo reports explicit nulls for hours a variable is unavailable
// (soil moisture is the usual offender). Null samples are kept as nil
// pointers: they never satisfy a threshold, are skipped by averages, and
// a current-hour reading that is entirely missing scores zero points.
//
// # Scoring
//
// ScoreRisk adds three capped groups of tiered points:
//
//	current conditions  ≤ 50  temperature, humidity, wind speed, soil moisture
//	fire activity       ≤ 25  nearest incident distance, active count, burned acres
//	historical trend    ≤ 25  dry days, high-wind days, low-humidity days
//
// Within a category the tiers are mutually exclusive and the highest tier
// wins. The total is clamped to [0, 100] and mapped to a level:
//
//	 0–33  Low
//	34–66  Medium
//	67–100 High
//
// # Trend Day Buckets
//
// AggregateTrend partitions hours into days by index (hour / 24), not by
// calendar date. A day counts as dry, windy or low-humidity when any single
// hour in it crosses the threshold.
package domain
