package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"ulascansenturk/weather-glasses/internal/weather"
)

func TestRoundTemperature(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{72.4, 72},
		{72.5, 73},
		{68.2, 68},
		{66.9, 67},
		{-0.5, 0},
		{-3.6, -4},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, weather.RoundTemperature(tc.in), "input %v", tc.in)
	}
}

func TestQueryVariants(t *testing.T) {
	t.Run("coordinates", func(t *testing.T) {
		q := weather.ByCoordinates(weather.Coordinates{Latitude: 37.8044, Longitude: -122.2712})

		assert.Equal(t, weather.QueryKindCoordinates, q.Kind())
		coords, ok := q.Coordinates()
		assert.True(t, ok)
		assert.Equal(t, 37.8044, coords.Latitude)
		_, ok = q.CityName()
		assert.False(t, ok)
	})

	t.Run("city", func(t *testing.T) {
		q := weather.ByCityName("San Francisco, CA")

		assert.Equal(t, weather.QueryKindCity, q.Kind())
		city, ok := q.CityName()
		assert.True(t, ok)
		assert.Equal(t, "San Francisco, CA", city)
		_, ok = q.Coordinates()
		assert.False(t, ok)
		assert.Equal(t, "San Francisco, CA", q.String())
	})
}

func TestResultCardBody(t *testing.T) {
	r := weather.NewResult("Oakland", 68.2, 66.9, "light rain")

	assert.Equal(t, "Oakland", r.LocationName)
	assert.Equal(t, 68, r.TemperatureF)
	assert.Equal(t, 67, r.FeelsLikeF)
	assert.Equal(t, "68°F\nFeels like 67°F\nlight rain", r.CardBody())
}
