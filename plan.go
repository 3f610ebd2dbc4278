package lvrebal

import (
	"encoding/json"
	"fmt"
)

// Plan is a pair of operations: shrink Source by Delta bytes and extend
// Target by the same amount. A plan is built once per invocation, executed
// once, and discarded. The shrink must complete and be verified before the
// extend is attempted so the freed extents are known to be in the volume
// group's free pool.
type Plan struct {
	// Source is the volume to shrink.
	Source LV `json:"source"`

	// Target is the volume to extend.
	Target LV `json:"target"`

	// Delta is the number of bytes moved, a multiple of the extent size.
	Delta uint64 `json:"delta"`
}

// NewPlan validates and builds a plan moving delta bytes from source to
// target. delta is rounded down to a multiple of extentSize; a delta that
// rounds to zero is invalid. Preconditions against the live system (free
// space, filesystem minimum size) are checked later at execution time.
func NewPlan(source, target LV, delta, extentSize uint64) (Plan, error) {
	if delta == 0 {
		return Plan{}, &PlanError{Reason: "shrink size is zero"}
	}

	if source.VGName == "" || source.Name == "" {
		return Plan{}, &PlanError{Reason: "no source volume"}
	}

	if target.VGName == "" || target.Name == "" {
		return Plan{}, &PlanError{Reason: "no target volume"}
	}

	if source.FullName() == target.FullName() {
		return Plan{}, &PlanError{
			Reason: fmt.Sprintf("source and target are both %s", source.FullName()),
		}
	}

	if source.VGName != target.VGName {
		return Plan{}, &PlanError{
			Reason: fmt.Sprintf("volumes are in different groups (%s, %s)",
				source.VGName, target.VGName),
		}
	}

	if extentSize == 0 {
		extentSize = DefaultExtentSize
	}

	rounded := Floor(delta, extentSize)
	if rounded == 0 {
		return Plan{}, &PlanError{
			Reason: fmt.Sprintf("shrink size %d is below the extent size %d",
				delta, extentSize),
		}
	}

	if rounded >= source.Size {
		return Plan{}, &PlanError{
			Reason: fmt.Sprintf("shrink size %s leaves nothing of %s (size %s)",
				HumanSize(rounded), source.FullName(), HumanSize(source.Size)),
		}
	}

	return Plan{Source: source, Target: target, Delta: rounded}, nil
}

func (p Plan) String() string {
	return fmt.Sprintf("shrink %s by %s, extend %s by %s",
		p.Source.FullName(), HumanSize(p.Delta),
		p.Target.FullName(), HumanSize(p.Delta))
}

// ShrinkState tracks the shrink operation's progress. The operation moves
// Mounted -> SafetyCheck -> {OnlineShrink | OfflineShrink} -> Verified ->
// Done, or ends in Aborted when a check fails.
type ShrinkState int

const (
	// Mounted - initial state, mount state of the source being determined.
	Mounted ShrinkState = iota

	// SafetyCheck - validating that the requested shrink cannot truncate
	// live data.
	SafetyCheck

	// OnlineShrink - shrinking the filesystem while it is mounted.
	OnlineShrink

	// OfflineShrink - volume unmounted, checked, and shrunk offline.
	OfflineShrink

	// Verified - the volume group's free pool grew by exactly the delta.
	Verified

	// Done - terminal success state.
	Done

	// Aborted - terminal failure state; no further mutation is attempted.
	Aborted
)

var shrinkStateNames = map[ShrinkState]string{
	Mounted:       "MOUNTED",
	SafetyCheck:   "SAFETYCHECK",
	OnlineShrink:  "ONLINESHRINK",
	OfflineShrink: "OFFLINESHRINK",
	Verified:      "VERIFIED",
	Done:          "DONE",
	Aborted:       "ABORTED",
}

func (s ShrinkState) String() string {
	if name, ok := shrinkStateNames[s]; ok {
		return name
	}

	return fmt.Sprintf("UNKNOWN-%d", s)
}

// MarshalJSON serializes the state as its string name.
func (s ShrinkState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts either the string name or the integer value.
func (s *ShrinkState) UnmarshalJSON(b []byte) error {
	var asStr string
	if err := json.Unmarshal(b, &asStr); err == nil {
		for state, name := range shrinkStateNames {
			if name == asStr {
				*s = state
				return nil
			}
		}

		return fmt.Errorf("unknown ShrinkState %q", asStr)
	}

	var asInt int
	if err := json.Unmarshal(b, &asInt); err != nil {
		return err
	}

	*s = ShrinkState(asInt)

	return nil
}
