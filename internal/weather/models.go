package weather

import (
	"fmt"
	"math"
	"strings"
)

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type QueryKind string

const (
	QueryKindCoordinates QueryKind = "coordinates"
	QueryKindCity        QueryKind = "city"
)

// Query selects the location for one fetch: coordinates or a free-text city name, never both.
type Query struct {
	kind   QueryKind
	coords Coordinates
	city   string
}

func ByCoordinates(c Coordinates) Query {
	return Query{kind: QueryKindCoordinates, coords: c}
}

func ByCityName(name string) Query {
	return Query{kind: QueryKindCity, city: name}
}

func (q Query) Kind() QueryKind {
	return q.kind
}

func (q Query) Coordinates() (Coordinates, bool) {
	return q.coords, q.kind == QueryKindCoordinates
}

func (q Query) CityName() (string, bool) {
	return q.city, q.kind == QueryKindCity
}

func (q Query) String() string {
	switch q.kind {
	case QueryKindCoordinates:
		return fmt.Sprintf("%g,%g", q.coords.Latitude, q.coords.Longitude)
	case QueryKindCity:
		return q.city
	default:
		return ""
	}
}

// Result is the display-ready current weather. Only built from a successful provider response.
type Result struct {
	LocationName string `json:"location"`
	TemperatureF int    `json:"temperature_f"`
	FeelsLikeF   int    `json:"feels_like_f"`
	Description  string `json:"description"`
}

func NewResult(locationName string, tempF, feelsLikeF float64, description string) Result {
	return Result{
		LocationName: locationName,
		TemperatureF: RoundTemperature(tempF),
		FeelsLikeF:   RoundTemperature(feelsLikeF),
		Description:  description,
	}
}

// RoundTemperature rounds half up: 72.5 -> 73, -0.5 -> 0.
func RoundTemperature(f float64) int {
	return int(math.Floor(f + 0.5))
}

// CardBody is the three-line text shown under the location name.
func (r Result) CardBody() string {
	return strings.Join([]string{
		fmt.Sprintf("%d°F", r.TemperatureF),
		fmt.Sprintf("Feels like %d°F", r.FeelsLikeF),
		r.Description,
	}, "\n")
}

type LocationCandidate struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Country   string  `json:"country"`
	State     string  `json:"state,omitempty"`
}

const MaxLocationCandidates = 5
