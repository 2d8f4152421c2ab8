package domain

import (
	"math"
	"strconv"
)

// RoundToOneDecimal rounds a vote average the way cards display it.
func RoundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10.0
}

// FormatVote renders a vote average with one decimal place, or "" when unknown.
func FormatVote(vote *float64) string {
	if vote == nil {
		return ""
	}
	return strconv.FormatFloat(RoundToOneDecimal(*vote), 'f', 1, 64)
}
