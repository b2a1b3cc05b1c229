package scoring

import (
	"github.com/blackwell-systems/formwatch/internal/bands"
	"github.com/blackwell-systems/formwatch/internal/workout"
)

// Angle tables span [0, 180). Below is unreachable for angles but keeps the
// tables total; Above catches exactly 180.

// OverallTiers picks the summary message from a [0,1] score.
var OverallTiers = bands.Table{
	Name:  "overall",
	Below: bands.Band{Message: "Needs work - review the form cues"},
	Bands: []bands.Band{
		{Min: 0, Max: 0.50, Message: "Needs work - review the form cues"},
		{Min: 0.50, Max: 0.70, Message: "Fair form - focus on the corrections below"},
		{Min: 0.70, Max: 0.85, Message: "Good form - minor adjustments needed"},
		{Min: 0.85, Max: 0.95, Message: "Great form!"},
		{Min: 0.95, Max: 1, Message: "Excellent form!"},
	},
	Above: bands.Band{Message: "Excellent form!"},
}

// SquatDepth bands the average knee flexion angle; 90 degrees is ideal.
var SquatDepth = bands.Table{
	Name:  "squat depth (avg knee angle)",
	Below: bands.Band{Deduction: 0.15, Message: "Too deep - keep control at the bottom"},
	Bands: []bands.Band{
		{Min: 0, Max: 70, Deduction: 0.15, Message: "Too deep - keep control at the bottom"},
		{Min: 70, Max: 80, Deduction: 0.05, Message: "Deep squat - great mobility"},
		{Min: 80, Max: 100, Deduction: 0, Message: "Perfect squat depth!"},
		{Min: 100, Max: 110, Deduction: 0.05, Message: "Good depth - almost parallel"},
		{Min: 110, Max: 130, Deduction: 0.15, Message: "Go deeper - aim for thighs parallel to the floor"},
		{Min: 130, Max: 180, Deduction: 0.3, Message: "Not deep enough - bend your knees more"},
	},
	Above: bands.Band{Deduction: 0.3, Message: "Not deep enough - bend your knees more"},
}

// SquatSymmetry bands the left/right knee angle difference.
var SquatSymmetry = bands.Table{
	Name:  "squat symmetry (knee angle difference)",
	Below: bands.Band{Message: "Excellent left/right balance"},
	Bands: []bands.Band{
		{Min: 0, Max: 5, Message: "Excellent left/right balance"},
		{Min: 5, Max: 10, Deduction: 0.05, Message: "Slight imbalance between legs"},
		{Min: 10, Max: 20, Deduction: 0.1, Message: "Noticeable imbalance - distribute weight evenly"},
		{Min: 20, Max: 180, Deduction: 0.2, Message: "Significant imbalance - check your stance"},
	},
	Above: bands.Band{Deduction: 0.2, Message: "Significant imbalance - check your stance"},
}

// SquatTorso bands the torso's deviation from vertical; 15-35 degrees is ideal.
var SquatTorso = bands.Table{
	Name:  "squat torso lean",
	Below: bands.Band{Deduction: 0.05, Message: "Very upright torso - hinge slightly at the hips"},
	Bands: []bands.Band{
		{Min: 0, Max: 15, Deduction: 0.05, Message: "Very upright torso - hinge slightly at the hips"},
		{Min: 15, Max: 35, Message: "Good torso angle"},
		{Min: 35, Max: 50, Deduction: 0.1, Message: "Leaning forward - keep your chest up"},
		{Min: 50, Max: 180, Deduction: 0.2, Message: "Excessive forward lean - chest up, back straight"},
	},
	Above: bands.Band{Deduction: 0.2, Message: "Excessive forward lean - chest up, back straight"},
}

// KneeOverToeLimit is the largest horizontal knee-ankle offset, in
// normalized units, that passes the tracking check.
const KneeOverToeLimit = 0.1

// SquatKneeTracking is the binary knee-over-toe check.
var SquatKneeTracking = bands.Table{
	Name:  "squat knee over toe",
	Below: bands.Band{Message: "Knees tracking well"},
	Bands: []bands.Band{
		{Min: 0, Max: KneeOverToeLimit, Message: "Knees tracking well"},
	},
	Above: bands.Band{Deduction: 0.1, Message: "Keep your knees behind your toes"},
}

// PushUpDepth bands the average elbow flexion angle; 70-90 degrees is ideal.
var PushUpDepth = bands.Table{
	Name:  "push-up depth (avg elbow angle)",
	Below: bands.Band{Deduction: 0.15, Message: "Too low - keep control at the bottom"},
	Bands: []bands.Band{
		{Min: 0, Max: 50, Deduction: 0.15, Message: "Too low - keep control at the bottom"},
		{Min: 50, Max: 70, Deduction: 0.05, Message: "Deep push-up - great range"},
		{Min: 70, Max: 90, Deduction: 0, Message: "Perfect push-up depth!"},
		{Min: 90, Max: 110, Deduction: 0.1, Message: "Go a little lower"},
		{Min: 110, Max: 140, Deduction: 0.2, Message: "Half rep - lower your chest further"},
		{Min: 140, Max: 180, Deduction: 0.3, Message: "Arms nearly straight - bend your elbows"},
	},
	Above: bands.Band{Deduction: 0.3, Message: "Arms nearly straight - bend your elbows"},
}

// PushUpBodyLine bands body straightness: 180 minus the shoulder-to-hip
// segment's deviation from horizontal. 160 and above is ideal.
var PushUpBodyLine = bands.Table{
	Name:  "push-up body line",
	Below: bands.Band{Deduction: 0.25, Message: "Body line broken - hips sagging or piked"},
	Bands: []bands.Band{
		{Min: 0, Max: 140, Deduction: 0.25, Message: "Body line broken - hips sagging or piked"},
		{Min: 140, Max: 160, Deduction: 0.1, Message: "Keep your body in a straighter line"},
		{Min: 160, Max: 180, Deduction: 0, Message: "Great body alignment!"},
	},
	Above: bands.Band{Message: "Great body alignment!"},
}

// PlankAlignment bands the shoulder-hip-ankle angle; 160-180 is ideal.
var PlankAlignment = bands.Table{
	Name:  "plank hip alignment",
	Below: bands.Band{Deduction: 0.4, Message: "Hips far out of line - reset your plank"},
	Bands: []bands.Band{
		{Min: 0, Max: 140, Deduction: 0.4, Message: "Hips far out of line - reset your plank"},
		{Min: 140, Max: 150, Deduction: 0.25, Message: "Hips sagging or raised - engage your core"},
		{Min: 150, Max: 160, Deduction: 0.1, Message: "Almost straight - squeeze your glutes"},
		{Min: 160, Max: 180, Deduction: 0, Message: "Perfect plank alignment!"},
	},
	Above: bands.Band{Message: "Perfect plank alignment!"},
}

// PrimaryTable returns the table that bands an exercise's primary metric.
func PrimaryTable(ex workout.Exercise) *bands.Table {
	switch ex {
	case workout.Squat:
		return &SquatDepth
	case workout.PushUp:
		return &PushUpDepth
	default:
		return &PlankAlignment
	}
}

// Tables returns every scorer table, overall tiers first.
func Tables() []*bands.Table {
	return []*bands.Table{
		&OverallTiers,
		&SquatDepth, &SquatSymmetry, &SquatTorso, &SquatKneeTracking,
		&PushUpDepth, &PushUpBodyLine,
		&PlankAlignment,
	}
}
