package narrative

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
)

// BuildPrompt renders the text-generation prompt for in. The score is stated
// as fixed; the model only writes the three lists.
func BuildPrompt(in Input) string {
	var b strings.Builder
	c := in.Conditions

	fmt.Fprintf(&b, "You are assessing wildfire risk for %s.\n\n", in.CityName)

	b.WriteString("Current weather:\n")
	fmt.Fprintf(&b, "- Temperature: %s °C\n", reading(c.Temperature))
	fmt.Fprintf(&b, "- Relative humidity: %s %%\n", reading(c.Humidity))
	fmt.Fprintf(&b, "- Wind speed: %s km/h\n", reading(c.WindSpeed))
	fmt.Fprintf(&b, "- Wind direction: %s °\n", reading(c.WindDirection))
	fmt.Fprintf(&b, "- Wind gusts: %s km/h\n", reading(c.WindGusts))
	fmt.Fprintf(&b, "- Precipitation: %s mm\n", reading(c.Precipitation))
	fmt.Fprintf(&b, "- Precipitation probability: %s %%\n", reading(c.PrecipitationProbability))
	fmt.Fprintf(&b, "- Soil moisture: %s m³/m³\n\n", reading(c.SoilMoisture))

	t := in.Trend
	fmt.Fprintf(&b, "Last %d days:\n", t.Days)
	fmt.Fprintf(&b, "- Dry days: %d\n", t.DryDays)
	fmt.Fprintf(&b, "- High-wind days: %d\n", t.HighWindDays)
	fmt.Fprintf(&b, "- Low-humidity days: %d\n", t.LowHumidityDays)
	fmt.Fprintf(&b, "- Average temperature: %.1f °C, humidity: %.0f %%, wind: %.1f km/h, soil moisture: %.3f m³/m³\n\n",
		t.AvgTemperature, t.AvgHumidity, t.AvgWindSpeed, t.AvgSoilMoisture)

	f := in.Fires
	fmt.Fprintf(&b, "Fire activity within %.0f km:\n", domain.FireSearchRadiusKm)
	fmt.Fprintf(&b, "- Active incidents: %d\n", f.ActiveCount)
	fmt.Fprintf(&b, "- Mapped perimeters: %d totalling %.0f acres\n", f.PerimeterCount, f.TotalBurnedAcres)
	if n := f.NearestIncident; n != nil {
		fmt.Fprintf(&b, "- Nearest incident: %s, %.1f km away, %.0f acres, containment %s\n",
			n.Name, n.DistanceKm, n.SizeAcres, percent(n.ContainmentPercent))
	} else {
		b.WriteString("- Nearest incident: none\n")
	}

	fmt.Fprintf(&b, "\nThe risk has already been scored as %d%%, level %s. Do not recompute it.\n",
		in.Score.Percentage, in.Score.Level)
	b.WriteString("Write findings consistent with that score. Respond with only a JSON object, no markdown, in this shape:\n")
	fmt.Fprintf(&b, `{"cityName": %q, "riskLevel": %q, "riskPercentage": "%d%%", `+
		`"keyRiskFactors": [2-3 strings], "currentConcerns": [2-3 strings], "safetyRecommendations": [2-3 strings]}`+"\n",
		in.CityName, in.Score.Level, in.Score.Percentage)

	return b.String()
}

func reading(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.2f", *v)
}

func percent(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.0f%%", *v)
}
