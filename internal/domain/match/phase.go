package match

import (
	"fmt"
	"strings"
)

// Phase selects which provider match list is queried.
type Phase string

const (
	PhasePast     Phase = "past"
	PhaseRunning  Phase = "running"
	PhaseUpcoming Phase = "upcoming"
)

func AllPhases() []Phase {
	return []Phase{PhasePast, PhaseRunning, PhaseUpcoming}
}

func ParsePhase(raw string) (Phase, bool) {
	switch phase := Phase(strings.ToLower(strings.TrimSpace(raw))); phase {
	case PhasePast, PhaseRunning, PhaseUpcoming:
		return phase, true
	default:
		return "", false
	}
}

func ParsePhases(raw []string) ([]Phase, error) {
	out := make([]Phase, 0, len(raw))
	seen := make(map[Phase]struct{}, len(raw))
	for _, item := range raw {
		phase, ok := ParsePhase(item)
		if !ok {
			return nil, fmt.Errorf("unsupported phase %q", item)
		}
		if _, dup := seen[phase]; dup {
			continue
		}
		seen[phase] = struct{}{}
		out = append(out, phase)
	}
	return out, nil
}

// SortOrder: finished matches newest first, the rest by start time.
func (p Phase) SortOrder() string {
	if p == PhasePast {
		return "-end_at"
	}
	return "begin_at"
}
