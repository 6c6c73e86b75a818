package mood

import (
	"fmt"

	"github.com/PabloGalante/paceful/internal/domain"
)

var labels = [...]string{
	1:  "Struggling",
	2:  "Very Low",
	3:  "Low",
	4:  "Uneasy",
	5:  "Okay",
	6:  "Fine",
	7:  "Good",
	8:  "Very Good",
	9:  "Great",
	10: "Thriving",
}

// Red to green, one step per value.
var colors = [...]string{
	1:  "#B91C1C",
	2:  "#DC2626",
	3:  "#EA580C",
	4:  "#F59E0B",
	5:  "#EAB308",
	6:  "#A3E635",
	7:  "#84CC16",
	8:  "#22C55E",
	9:  "#16A34A",
	10: "#15803D",
}

// ValidateValue accepts MinMoodValue..MaxMoodValue.
func ValidateValue(v int) error {
	if v < domain.MinMoodValue || v > domain.MaxMoodValue {
		return fmt.Errorf("%w: mood value %d outside %d..%d",
			domain.ErrInvalidInput, v, domain.MinMoodValue, domain.MaxMoodValue)
	}
	return nil
}

// Label returns the display label for a mood value.
func Label(v int) (string, error) {
	if err := ValidateValue(v); err != nil {
		return "", err
	}
	return labels[v], nil
}

// Color returns the hex display color for a mood value.
func Color(v int) (string, error) {
	if err := ValidateValue(v); err != nil {
		return "", err
	}
	return colors[v], nil
}

// LabelForAverage rounds an average to the nearest value and labels it.
func LabelForAverage(avg float64) (string, string, error) {
	v := int(avg + 0.5)
	label, err := Label(v)
	if err != nil {
		return "", "", err
	}
	return label, colors[v], nil
}

// Scale lists the mapping for every valid value, ascending.
func Scale() []domain.MoodScalePoint {
	out := make([]domain.MoodScalePoint, 0, domain.MaxMoodValue)
	for v := domain.MinMoodValue; v <= domain.MaxMoodValue; v++ {
		out = append(out, domain.MoodScalePoint{Value: v, Label: labels[v], Color: colors[v]})
	}
	return out
}
