// Package mockvm provides an in-memory model of a volume group, the
// filesystems on its volumes and the mount table. It backs the engine tests
// and the CLI's dry-run mode.
package mockvm

import (
	"encoding/json"
	"fmt"
	"os"

	lvrebal "machinerun.io/lvrebal"
)

// System models one machine's volume groups. It implements
// lvrebal.VolumeManager, lvrebal.FSTool and lvrebal.MountTable.
type System struct {
	VGs lvrebal.VGSet `json:"vgs"`

	// Mounts maps device path to mount point.
	Mounts map[string]string `json:"mounts"`

	// Used maps device path to bytes occupied on its filesystem.
	Used map[string]uint64 `json:"used"`

	// CheckFails marks device paths whose consistency check fails.
	CheckFails map[string]bool `json:"checkFails,omitempty"`

	// OnlineShrinkFails makes every online shrink attempt fail, to
	// exercise the offline fallback.
	OnlineShrinkFails bool `json:"-"`

	// fsSize tracks the filesystem size per device path, which trails the
	// LV size across shrink and grow.
	fsSize map[string]uint64

	// PostShrink, when set, runs after every successful ReduceLV. Tests
	// use it to disturb the free pool between the shrink and the extend.
	PostShrink func(*System) `json:"-"`
}

// Load reads a system layout from a JSON file. Layout errors panic; a mock
// with a broken model is a test bug.
func Load(layout string) *System {
	content, err := os.ReadFile(layout)
	if err != nil {
		panic(err)
	}

	sys := &System{}
	if err := json.Unmarshal(content, sys); err != nil {
		panic(err)
	}

	sys.init()

	return sys
}

// FromScan builds a mock system from live scan results, so a dry run can
// replay a plan against the machine's real shape.
func FromScan(vgs lvrebal.VGSet, mounts map[string]string, used map[string]uint64) *System {
	sys := &System{VGs: vgs, Mounts: mounts, Used: used}
	sys.init()

	return sys
}

func (sys *System) init() {
	if sys.Mounts == nil {
		sys.Mounts = map[string]string{}
	}

	if sys.Used == nil {
		sys.Used = map[string]uint64{}
	}

	sys.fsSize = map[string]uint64{}

	for _, vg := range sys.VGs {
		for _, lv := range vg.Volumes {
			sys.fsSize[lv.Path] = lv.Size
		}
	}
}

func (sys *System) findLV(vgName, lvName string) (lvrebal.VG, lvrebal.LV, error) {
	vg, ok := sys.VGs[vgName]
	if !ok {
		return lvrebal.VG{}, lvrebal.LV{}, fmt.Errorf("vg %s does not exist", vgName)
	}

	lv, ok := vg.Volumes[lvName]
	if !ok {
		return lvrebal.VG{}, lvrebal.LV{},
			fmt.Errorf("lv %s/%s does not exist", vgName, lvName)
	}

	return vg, lv, nil
}

// ScanVGs implements lvrebal.VolumeManager. Returned sets are copies; the
// caller cannot disturb the model through them.
func (sys *System) ScanVGs(filter lvrebal.VGFilter) (lvrebal.VGSet, error) {
	vgs := lvrebal.VGSet{}

	for n, vg := range sys.VGs {
		if filter != nil && !filter(vg) {
			continue
		}

		cp := vg
		cp.Volumes = lvrebal.LVSet{}
		cp.PVs = lvrebal.PVSet{}

		for ln, lv := range vg.Volumes {
			cp.Volumes[ln] = lv
		}

		for pn, pv := range vg.PVs {
			cp.PVs[pn] = pv
		}

		vgs[n] = cp
	}

	return vgs, nil
}

// ScanLVs implements lvrebal.VolumeManager, keyed by vg/lv name.
func (sys *System) ScanLVs(filter lvrebal.LVFilter) (lvrebal.LVSet, error) {
	lvs := lvrebal.LVSet{}

	for _, vg := range sys.VGs {
		for _, lv := range vg.Volumes {
			if filter == nil || filter(lv) {
				lvs[lv.FullName()] = lv
			}
		}
	}

	return lvs, nil
}

// ReduceLV implements lvrebal.VolumeManager. It refuses to shrink an LV
// below its filesystem, mirroring the data-loss hazard the real tool has.
func (sys *System) ReduceLV(vgName, lvName string, newSize uint64) error {
	vg, lv, err := sys.findLV(vgName, lvName)
	if err != nil {
		return err
	}

	if newSize >= lv.Size {
		return fmt.Errorf("lv %s/%s: %d is not a reduction of %d",
			vgName, lvName, newSize, lv.Size)
	}

	if fs := sys.fsSize[lv.Path]; newSize < fs {
		return fmt.Errorf("lv %s/%s: reducing to %d would truncate filesystem of %d",
			vgName, lvName, newSize, fs)
	}

	vg.FreeSpace += lv.Size - newSize
	lv.Size = newSize
	vg.Volumes[lvName] = lv
	sys.VGs[vgName] = vg

	if sys.PostShrink != nil {
		sys.PostShrink(sys)
	}

	return nil
}

// ExtendLV implements lvrebal.VolumeManager. It fails when the free pool
// does not hold the delta; it never grows by a lesser amount.
func (sys *System) ExtendLV(vgName, lvName string, newSize uint64) error {
	vg, lv, err := sys.findLV(vgName, lvName)
	if err != nil {
		return err
	}

	if newSize <= lv.Size {
		return fmt.Errorf("lv %s/%s: %d is not an extension of %d",
			vgName, lvName, newSize, lv.Size)
	}

	delta := newSize - lv.Size
	if vg.FreeSpace < delta {
		return fmt.Errorf("vg %s has %d free, need %d", vgName, vg.FreeSpace, delta)
	}

	vg.FreeSpace -= delta
	lv.Size = newSize
	vg.Volumes[lvName] = lv
	sys.VGs[vgName] = vg

	return nil
}

func (sys *System) lvByPath(devPath string) (lvrebal.VG, lvrebal.LV, error) {
	for _, vg := range sys.VGs {
		for _, lv := range vg.Volumes {
			if lv.Path == devPath {
				return vg, lv, nil
			}
		}
	}

	return lvrebal.VG{}, lvrebal.LV{}, fmt.Errorf("no lv with path %s", devPath)
}

// UsageAt implements lvrebal.FSTool.
func (sys *System) UsageAt(mountPoint string) (lvrebal.Usage, error) {
	for dev, mp := range sys.Mounts {
		if mp != mountPoint {
			continue
		}

		size := sys.fsSize[dev]
		used := sys.Used[dev]

		return lvrebal.Usage{Size: size, Used: used, Free: size - used}, nil
	}

	return lvrebal.Usage{}, fmt.Errorf("nothing mounted at %s", mountPoint)
}

// MinSize implements lvrebal.FSTool: the mock filesystem can shrink down to
// exactly its used bytes.
func (sys *System) MinSize(lv lvrebal.LV, mountPoint string) (uint64, error) {
	return sys.Used[lv.Path], nil
}

// CanShrink implements lvrebal.FSTool.
func (sys *System) CanShrink(fstype string) bool {
	switch fstype {
	case "ext2", "ext3", "ext4", "btrfs":
		return true
	}

	return false
}

// CanShrinkOnline implements lvrebal.FSTool.
func (sys *System) CanShrinkOnline(fstype string) bool {
	return fstype == "btrfs"
}

// Check implements lvrebal.FSTool.
func (sys *System) Check(lv lvrebal.LV) error {
	if sys.CheckFails[lv.Path] {
		return fmt.Errorf("filesystem on %s has errors", lv.Path)
	}

	return nil
}

// Shrink implements lvrebal.FSTool.
func (sys *System) Shrink(lv lvrebal.LV, newSize uint64, online bool, mountPoint string) error {
	if online && !sys.CanShrinkOnline(lv.FSType) {
		return fmt.Errorf("%s cannot shrink online", lv.FSType)
	}

	if online && sys.OnlineShrinkFails {
		return fmt.Errorf("online shrink of %s failed", lv.Path)
	}

	if !online {
		if _, mounted := sys.Mounts[lv.Path]; mounted {
			return fmt.Errorf("%s is mounted, cannot shrink offline", lv.Path)
		}
	}

	if newSize < sys.Used[lv.Path] {
		return fmt.Errorf("shrinking %s to %d would truncate %d used bytes",
			lv.Path, newSize, sys.Used[lv.Path])
	}

	sys.fsSize[lv.Path] = newSize

	return nil
}

// Grow implements lvrebal.FSTool: the filesystem fills the device.
func (sys *System) Grow(lv lvrebal.LV, mountPoint string) error {
	_, cur, err := sys.lvByPath(lv.Path)
	if err != nil {
		return err
	}

	sys.fsSize[lv.Path] = cur.Size

	return nil
}

// FSSize reports the modeled filesystem size on a device.
func (sys *System) FSSize(devPath string) uint64 {
	return sys.fsSize[devPath]
}

// MountPoint implements lvrebal.MountTable.
func (sys *System) MountPoint(devPath string) (string, bool, error) {
	mp, ok := sys.Mounts[devPath]
	return mp, ok, nil
}

// Mount implements lvrebal.MountTable.
func (sys *System) Mount(devPath, target string) error {
	if mp, ok := sys.Mounts[devPath]; ok {
		return fmt.Errorf("%s already mounted at %s", devPath, mp)
	}

	sys.Mounts[devPath] = target

	return nil
}

// Unmount implements lvrebal.MountTable.
func (sys *System) Unmount(devPath string) error {
	if _, ok := sys.Mounts[devPath]; !ok {
		return fmt.Errorf("%s is not mounted", devPath)
	}

	delete(sys.Mounts, devPath)

	return nil
}
