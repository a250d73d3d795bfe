package record

import "strings"

// Stage is the normalized pipeline stage of a prospect. Upstream stores stage
// as a free string; NormalizeStage collapses that open space into this
// closed set so unrecognized values are a visible case, not a silent branch.
type Stage string

const (
	StageNew       Stage = "new"
	StageContacted Stage = "contacted"
	StageQualified Stage = "qualified"
	StageProposal  Stage = "proposal"
	StageWon       Stage = "won"
	StageLost      Stage = "lost"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageNew, StageContacted, StageQualified, StageProposal, StageWon, StageLost}

var stageAliases = map[string]Stage{
	"new":         StageNew,
	"lead":        StageNew,
	"prospect":    StageNew,
	"contacted":   StageContacted,
	"contact":     StageContacted,
	"qualified":   StageQualified,
	"qualify":     StageQualified,
	"proposal":    StageProposal,
	"quote":       StageProposal,
	"quoted":      StageProposal,
	"won":         StageWon,
	"closed_won":  StageWon,
	"closed-won":  StageWon,
	"lost":        StageLost,
	"closed_lost": StageLost,
	"closed-lost": StageLost,
}

// NormalizeStage maps a raw stage string to a Stage. Unrecognized values
// normalize to StageNew; the caller treats those as a data-quality signal,
// not a failure.
func NormalizeStage(raw string) Stage {
	key := strings.ToLower(strings.TrimSpace(raw))
	if stage, ok := stageAliases[key]; ok {
		return stage
	}
	return StageNew
}

// Recognized reports whether raw maps to a stage without falling back to
// the default bucket.
func Recognized(raw string) bool {
	_, ok := stageAliases[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Active reports whether the stage is still in play (neither won nor lost).
func (s Stage) Active() bool {
	return s != StageWon && s != StageLost
}

// Qualified reports whether the prospect advanced past initial contact.
func (s Stage) Qualified() bool {
	return s == StageQualified || s == StageProposal || s == StageWon
}
