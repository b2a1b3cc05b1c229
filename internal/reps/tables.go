package reps

import "github.com/blackwell-systems/formwatch/internal/bands"

// These tables carry labels only; rep scores come from the frame scores.

// Tempo labels a rep's duration in seconds.
var Tempo = bands.Table{
	Name:  "rep tempo (seconds)",
	Below: bands.Band{Message: "Very fast tempo - slow down and control the movement"},
	Bands: []bands.Band{
		{Min: 0, Max: 1.5, Message: "Very fast tempo - slow down and control the movement"},
		{Min: 1.5, Max: 2.5, Message: "Fast tempo - try a slower descent"},
		{Min: 2.5, Max: 4.0, Message: "Good controlled tempo"},
		{Min: 4.0, Max: 6.0, Message: "Slow tempo - good time under tension"},
	},
	Above: bands.Band{Message: "Very slow tempo - keep the movement continuous"},
}

// HoldDuration labels a static hold's duration in seconds.
var HoldDuration = bands.Table{
	Name:  "hold duration (seconds)",
	Below: bands.Band{Message: "Short hold - build up to 30 seconds"},
	Bands: []bands.Band{
		{Min: 0, Max: 10, Message: "Short hold - build up to 30 seconds"},
		{Min: 10, Max: 30, Message: "Solid hold - keep extending it"},
		{Min: 30, Max: 60, Message: "Strong hold!"},
	},
	Above: bands.Band{Message: "Excellent endurance!"},
}

// RangeOfMotion labels the difference between the peak and deepest angle.
var RangeOfMotion = bands.Table{
	Name:  "range of motion (degrees)",
	Below: bands.Band{Message: "Very limited range of motion"},
	Bands: []bands.Band{
		{Min: 0, Max: 25, Message: "Very limited range of motion"},
		{Min: 25, Max: 45, Message: "Limited range of motion - move through the full rep"},
		{Min: 45, Max: 70, Message: "Good range of motion"},
	},
	Above: bands.Band{Message: "Full range of motion!"},
}

// Consistency labels the 0-100 consistency score of the primary angle.
var Consistency = bands.Table{
	Name:  "movement consistency (0-100)",
	Below: bands.Band{Message: "Inconsistent movement - slow down and focus on control"},
	Bands: []bands.Band{
		{Min: 0, Max: 50, Message: "Inconsistent movement - slow down and focus on control"},
		{Min: 50, Max: 70, Message: "Somewhat consistent movement"},
		{Min: 70, Max: 85, Message: "Consistent movement"},
	},
	Above: bands.Band{Message: "Very consistent movement!"},
}

// Tables returns the aggregator's label tables.
func Tables() []*bands.Table {
	return []*bands.Table{&Tempo, &HoldDuration, &RangeOfMotion, &Consistency}
}
