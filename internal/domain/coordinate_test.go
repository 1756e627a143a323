package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	losAngeles   = Coordinate{Latitude: 34.0522, Longitude: -118.2437}
	sanFrancisco = Coordinate{Latitude: 37.7749, Longitude: -122.4194}
	london       = Coordinate{Latitude: 51.5074, Longitude: -0.1278}
	paris        = Coordinate{Latitude: 48.8566, Longitude: 2.3522}
)

func TestDistance_SamePointIsZero(t *testing.T) {
	for _, c := range []Coordinate{losAngeles, london, {Latitude: 90}, {Latitude: -90, Longitude: 180}} {
		assert.Zero(t, Distance(c, c))
	}
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][2]Coordinate{
		{losAngeles, sanFrancisco},
		{london, paris},
		{losAngeles, london},
		{{Latitude: -33.87, Longitude: 151.21}, {Latitude: 40.71, Longitude: -74.01}},
	}
	for _, p := range pairs {
		assert.InDelta(t, Distance(p[0], p[1]), Distance(p[1], p[0]), 1e-9)
	}
}

func TestDistance_ReferenceCities(t *testing.T) {
	t.Run("Los Angeles to San Francisco", func(t *testing.T) {
		assert.InEpsilon(t, 559.0, Distance(losAngeles, sanFrancisco), 0.01)
	})
	t.Run("London to Paris", func(t *testing.T) {
		assert.InEpsilon(t, 343.5, Distance(london, paris), 0.01)
	})
}

func TestDistance_Antipodal(t *testing.T) {
	d := Distance(Coordinate{Latitude: 0, Longitude: 0}, Coordinate{Latitude: 0, Longitude: 180})
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 0.001)
	assert.InDelta(t, 20015.0, d, 1.0)
}

func TestDistance_NeverNegative(t *testing.T) {
	for lat := -90.0; lat <= 90; lat += 30 {
		for lon := -180.0; lon <= 180; lon += 45 {
			d := Distance(losAngeles, Coordinate{Latitude: lat, Longitude: lon})
			assert.GreaterOrEqual(t, d, 0.0)
			assert.LessOrEqual(t, d, math.Pi*EarthRadiusKm+1e-6)
		}
	}
}

func TestCoordinate_Validate(t *testing.T) {
	require.NoError(t, losAngeles.Validate())
	require.NoError(t, Coordinate{Latitude: -90, Longitude: 180}.Validate())

	for _, c := range []Coordinate{
		{Latitude: 90.01},
		{Latitude: -91},
		{Longitude: 180.5},
		{Longitude: -181},
		{Latitude: math.NaN()},
	} {
		err := c.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	}
}
