package models

import (
	"fmt"
	"strings"
)

// Dimension is one named axis of a gate score, in [0,1].
type Dimension struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Score is the shared result shape of all three gates.
type Score struct {
	Combined   float64     `json:"combined"`
	Dimensions []Dimension `json:"dimensions"`
	Threshold  float64     `json:"threshold"`
	Pass       bool        `json:"pass"`
}

// Dimension returns the value of the named dimension.
func (s Score) Dimension(name string) (float64, bool) {
	for _, d := range s.Dimensions {
		if d.Name == name {
			return d.Value, true
		}
	}
	return 0, false
}

// Weakest returns the dimension with the lowest value. Ties resolve to the
// dimension declared first.
func (s Score) Weakest() Dimension {
	if len(s.Dimensions) == 0 {
		return Dimension{}
	}
	weakest := s.Dimensions[0]
	for _, d := range s.Dimensions[1:] {
		if d.Value < weakest.Value {
			weakest = d
		}
	}
	return weakest
}

// DimensionMap flattens dimensions for metadata payloads.
func (s Score) DimensionMap() map[string]float64 {
	m := make(map[string]float64, len(s.Dimensions))
	for _, d := range s.Dimensions {
		m[d.Name] = d.Value
	}
	return m
}

// String renders the score for diagnostics, e.g. "0.647 >= 0.400 [irreversibility=0.600 ...]".
func (s Score) String() string {
	op := "<"
	if s.Pass {
		op = ">="
	}
	parts := make([]string, 0, len(s.Dimensions))
	for _, d := range s.Dimensions {
		parts = append(parts, fmt.Sprintf("%s=%.3f", d.Name, d.Value))
	}
	return fmt.Sprintf("%.3f %s %.3f [%s]", s.Combined, op, s.Threshold, strings.Join(parts, " "))
}
