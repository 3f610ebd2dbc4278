//go:build linux
// +build linux

package linux

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	lvrebal "machinerun.io/lvrebal"
)

func TestToLV(t *testing.T) {
	d := lvmLVData{
		Name:   "data",
		VGName: "vg0",
		Path:   "/dev/vg0/data",
		Size:   size1,
		UUID:   "yY7AfO-dtWE-ROJR-f7G9-d70P-pjGF-lFfXgf",
		Active: true,
		raw:    map[string]string{"lv_name": "data"},
	}

	want := lvrebal.LV{
		Name:   "data",
		VGName: "vg0",
		Path:   "/dev/vg0/data",
		Size:   size1,
		Active: true,
	}

	if diff := cmp.Diff(d.toLV(), want); diff != "" {
		t.Errorf("toLV mismatch (-got +want):\n%s", diff)
	}
}

func TestVgLv(t *testing.T) {
	if got := vgLv("vg0", "data"); got != "vg0/data" {
		t.Errorf("vgLv returned %q", got)
	}
}
