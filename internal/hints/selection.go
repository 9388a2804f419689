package hints

import (
	"github.com/abhisek/hintly/internal/diagnosis"
	"github.com/abhisek/hintly/internal/progress"
)

// levelTypes maps hint levels to their default hint type.
var levelTypes = map[int]HintType{
	1: HintConceptual,
	2: HintApproach,
	3: HintImplementation,
	4: HintDebug,
	5: HintDebug,
}

// debugFromLevel is the lowest level at which a recognized error category
// switches the hint to debugging.
const debugFromLevel = 3

// Selection is the hint level and type for one request.
type Selection struct {
	Level int
	Type  HintType

	// Skip is set when the attempt succeeded and no hint is wanted.
	Skip bool
}

// SelectHint picks the hint level and type. The level is the tracker's,
// with escalation already applied; it is never changed here.
func SelectHint(level int, eval *AttemptEvaluation, generateOnSuccess bool) Selection {
	level = min(max(level, progress.MinLevel), progress.MaxLevel)
	sel := Selection{Level: level, Type: levelTypes[level]}
	if eval == nil {
		return sel
	}
	if eval.Success {
		if !generateOnSuccess {
			sel.Type = HintNone
			sel.Skip = true
		}
		return sel
	}
	if level >= debugFromLevel && eval.Category != "" && eval.Category != diagnosis.CategoryOther {
		sel.Type = HintDebug
	}
	return sel
}
