// Package units provides shared constants and conversion for display units
package units

import (
	"fmt"
	"math"
	"strconv"
)

// Distance unit constants
const (
	Metres = "m"
	Feet   = "ft"
	Yards  = "yd"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Metres, Feet, Yards}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, ft, yd"
}

// ConvertDistance converts a distance from metres to the target units.
// Samples are recorded in metres.
func ConvertDistance(metres float64, targetUnits string) float64 {
	switch targetUnits {
	case Feet:
		return metres * 3.280839895
	case Yards:
		return metres * 1.0936132983
	default:
		return metres
	}
}

// Round2 rounds v to two decimal places, the precision used for odometry rows.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatDistance renders a metre value in the target units with its suffix,
// e.g. "50m" or "164.04ft". Trailing zeros are dropped.
func FormatDistance(metres float64, targetUnits string) string {
	if !IsValid(targetUnits) {
		targetUnits = Metres
	}
	v := Round2(ConvertDistance(metres, targetUnits))
	return fmt.Sprintf("%s%s", strconv.FormatFloat(v, 'f', -1, 64), targetUnits)
}
