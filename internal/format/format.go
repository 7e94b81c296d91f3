package format

import (
	"math"
	"strconv"
)

const (
	milesPerKilometer = 0.621371
	feetPerMeter      = 3.28084
)

// Distance formats a distance stored in kilometers as miles with one decimal.
// Example: Distance(10) => "6.2 mi."
func Distance(km float64) string {
	miles := math.Round(km*milesPerKilometer*10) / 10
	return strconv.FormatFloat(miles, 'f', 1, 64) + " mi."
}

// Elevation formats an elevation gain stored in meters as whole feet.
// Non-negative values carry a leading "+".
// Example: Elevation(1000) => "+3281 ft."
func Elevation(meters float64) string {
	feet := int64(math.Round(meters * feetPerMeter))
	sign := ""
	if feet >= 0 {
		sign = "+"
	}
	return sign + strconv.FormatInt(feet, 10) + " ft."
}
