package util

import (
	"strconv"
)

// FormatPopulation renders a head count as a short label: 1.4 B, 125.7 M, 8.2 K.
// Unknown values render as "N/A".
func FormatPopulation(n int64) string {
	switch {
	case n <= 0:
		return "N/A"
	case n >= 1e9:
		return strconv.FormatFloat(float64(n)/1e9, 'f', 1, 64) + " B"
	case n >= 1e6:
		return strconv.FormatFloat(float64(n)/1e6, 'f', 1, 64) + " M"
	case n >= 1e3:
		return strconv.FormatFloat(float64(n)/1e3, 'f', 1, 64) + " K"
	}
	return strconv.FormatInt(n, 10)
}
