package logger

import (
	"fmt"

	"github.com/fatih/color"
)

// colorScheme defines consistent colors for score output.
// Green: passing verdicts
// Red: failing verdicts
// Yellow: values near a threshold
// Cyan: labels and identifiers
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard color scheme.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

var scheme = newColorScheme()

// nearBand is how close to a threshold a passing value is highlighted.
const nearBand = 0.05

// ColorizedMetric formats "label: value" with a cyan label.
// Colors are automatically disabled when output is not a TTY via fatih/color's built-in detection.
func ColorizedMetric(label string, value interface{}) string {
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), scheme.value.Sprintf("%v", value))
}

// ColorizedScore formats a score against its threshold: red below, yellow
// within nearBand above, green otherwise.
func ColorizedScore(label string, value, threshold float64) string {
	c := scheme.success
	switch {
	case value < threshold:
		c = scheme.fail
	case value < threshold+nearBand:
		c = scheme.warn
	}
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), c.Sprintf("%.3f", value))
}

// Verdict renders PASS or FAIL in the matching color.
func Verdict(pass bool) string {
	if pass {
		return scheme.success.Sprint("PASS")
	}
	return scheme.fail.Sprint("FAIL")
}
