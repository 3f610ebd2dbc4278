package lvrebal_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	lvrebal "machinerun.io/lvrebal"
)

func testLV(name string, size uint64) lvrebal.LV {
	return lvrebal.LV{
		Name:   name,
		VGName: "vg0",
		Path:   "/dev/vg0/" + name,
		Size:   size,
		FSType: "ext4",
		Active: true,
	}
}

func TestNewPlanRejectsZeroDelta(t *testing.T) {
	ast := assert.New(t)

	_, err := lvrebal.NewPlan(
		testLV("data", 50*lvrebal.Gibibyte),
		testLV("logs", 10*lvrebal.Gibibyte),
		0, lvrebal.DefaultExtentSize)

	var perr *lvrebal.PlanError

	ast.Error(err)
	ast.ErrorAs(err, &perr)
}

func TestNewPlanRejectsSameVolume(t *testing.T) {
	ast := assert.New(t)

	lv := testLV("data", 50*lvrebal.Gibibyte)
	_, err := lvrebal.NewPlan(lv, lv, lvrebal.Gibibyte, lvrebal.DefaultExtentSize)

	ast.Error(err)
}

func TestNewPlanRejectsCrossVG(t *testing.T) {
	ast := assert.New(t)

	src := testLV("data", 50*lvrebal.Gibibyte)
	tgt := testLV("logs", 10*lvrebal.Gibibyte)
	tgt.VGName = "vg1"

	_, err := lvrebal.NewPlan(src, tgt, lvrebal.Gibibyte, lvrebal.DefaultExtentSize)
	ast.Error(err)
}

func TestNewPlanRoundsDeltaToExtent(t *testing.T) {
	ast := assert.New(t)

	src := testLV("data", 50*lvrebal.Gibibyte)
	tgt := testLV("logs", 10*lvrebal.Gibibyte)

	plan, err := lvrebal.NewPlan(
		src, tgt, 10*lvrebal.Gibibyte+lvrebal.Mebibyte, lvrebal.DefaultExtentSize)
	ast.NoError(err)
	ast.Equal(10*lvrebal.Gibibyte, plan.Delta)

	// A delta below one extent rounds to zero and is invalid.
	_, err = lvrebal.NewPlan(src, tgt, lvrebal.Mebibyte, lvrebal.DefaultExtentSize)
	ast.Error(err)
}

func TestNewPlanRejectsShrinkToNothing(t *testing.T) {
	ast := assert.New(t)

	src := testLV("data", 10*lvrebal.Gibibyte)
	tgt := testLV("logs", 10*lvrebal.Gibibyte)

	_, err := lvrebal.NewPlan(src, tgt, 10*lvrebal.Gibibyte, lvrebal.DefaultExtentSize)
	ast.Error(err)
}

var validStates = map[string]lvrebal.ShrinkState{
	"MOUNTED":       lvrebal.Mounted,
	"SAFETYCHECK":   lvrebal.SafetyCheck,
	"ONLINESHRINK":  lvrebal.OnlineShrink,
	"OFFLINESHRINK": lvrebal.OfflineShrink,
	"VERIFIED":      lvrebal.Verified,
	"DONE":          lvrebal.Done,
	"ABORTED":       lvrebal.Aborted,
}

func TestShrinkStateString(t *testing.T) {
	for asStr, state := range validStates {
		found := state.String()
		if found != asStr {
			t.Errorf("ShrinkState(%d).String() found %s, expected %s",
				state, found, asStr)
		}
	}
}

func TestShrinkStateJSON(t *testing.T) {
	var found lvrebal.ShrinkState

	for asStr, state := range validStates {
		jbytes, err := json.Marshal(state)
		if err != nil {
			t.Errorf("Failed to marshal %#v: %s", state, err)
			continue
		}

		if !strings.Contains(string(jbytes), asStr) {
			t.Errorf("Did not find '%s' in json: %s", asStr, jbytes)
		}

		// both the string name and the integer value unmarshal.
		for _, blob := range []string{string(jbytes), fmt.Sprintf("%d", state)} {
			if err := json.Unmarshal([]byte(blob), &found); err != nil {
				t.Errorf("Failed to unmarshal %s: %s", blob, err)
			} else if found != state {
				t.Errorf("Unserialized %s, got %d, expected %d", blob, found, state)
			}
		}
	}
}
