package lvrebal

import (
	"fmt"
	"path"
	"sort"
)

// LV describes an lvm logical volume. A logical volume partitions a volume
// group into a slice of capacity that can be used as a block device.
type LV struct {
	// Name is the name of the logical volume.
	Name string `json:"name"`

	// VGName is the name of the volume group the volume belongs to.
	VGName string `json:"vgName"`

	// Path is the device path, typically /dev/<vg>/<lv>.
	Path string `json:"path"`

	// Size is the size of the logical volume in bytes.
	Size uint64 `json:"size"`

	// FSType is the filesystem type on the volume, empty if unknown.
	FSType string `json:"fsType"`

	// Active indicates if the volume is active (device node present).
	Active bool `json:"active"`
}

// FullName returns the volume name in vg/lv form, as lvm commands take it.
func (lv LV) FullName() string {
	return path.Join(lv.VGName, lv.Name)
}

// LVSet is a map of LV names to the LV.
type LVSet map[string]LV

// Sorted returns the volumes ordered by vg/lv name.
func (lvs LVSet) Sorted() []LV {
	list := make([]LV, 0, len(lvs))
	for _, lv := range lvs {
		list = append(list, lv)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].FullName() < list[j].FullName()
	})

	return list
}

// PV wraps a lvm physical volume, the raw block device that provides
// storage capacity to a volume group.
type PV struct {
	// Name is the name of the PV.
	Name string `json:"name"`

	// Path is the device path of the PV.
	Path string `json:"path"`

	// VGName is the volume group the PV belongs to, empty if unassigned.
	VGName string `json:"vgName"`

	// Size is the size of the PV in bytes.
	Size uint64 `json:"size"`

	// FreeSize is the unallocated size of the PV in bytes.
	FreeSize uint64 `json:"freeSize"`
}

// PVSet is a set of PVs indexed by their names.
type PVSet map[string]PV

// VG wraps a lvm volume group. A volume group combines one or more physical
// volumes into a storage pool from which logical volumes draw space.
type VG struct {
	// Name is the name of the volume group.
	Name string `json:"name"`

	// Size is the current size of the volume group.
	Size uint64 `json:"size"`

	// FreeSpace is the free extent pool of the volume group in bytes.
	FreeSpace uint64 `json:"freeSpace"`

	// ExtentSize is the physical extent size in bytes. All allocations
	// in the group happen in multiples of this.
	ExtentSize uint64 `json:"extentSize"`

	// Volumes is the set of all logical volumes in this volume group.
	Volumes LVSet `json:"volumes"`

	// PVs is the set of PVs that belong to this VG.
	PVs PVSet `json:"pvs"`
}

// VGSet is a set of volume groups indexed by their name.
type VGSet map[string]VG

// Details returns a formatted string with the information of volume groups.
func (vgs VGSet) Details() string {
	buf := fmt.Sprintf("%-12s %10s %10s %6s\n", "VG", "SIZE", "FREE", "#LV")

	names := make([]string, 0, len(vgs))
	for n := range vgs {
		names = append(names, n)
	}

	sort.Strings(names)

	for _, n := range names {
		vg := vgs[n]
		buf += fmt.Sprintf("%-12s %10s %10s %6d\n",
			vg.Name, HumanSize(vg.Size), HumanSize(vg.FreeSpace), len(vg.Volumes))
	}

	return buf
}

// LVFilter is a filter function that returns true if the matching lv is
// accepted.
type LVFilter func(LV) bool

// VGFilter is a filter function that returns true if the matching vg is
// accepted.
type VGFilter func(VG) bool

// PVFilter is a filter function that returns true if the matching pv is
// accepted.
type PVFilter func(PV) bool

// Usage reports the filesystem usage of a logical volume. For an unmounted
// volume Mounted is false and the usage figures are zero; querying usage of
// an unmounted volume is not an error.
type Usage struct {
	// Mounted indicates whether the volume was mounted at scan time.
	Mounted bool `json:"mounted"`

	// MountPoint is where the volume is mounted, empty if unmounted.
	MountPoint string `json:"mountPoint"`

	// Size is the filesystem size in bytes.
	Size uint64 `json:"size"`

	// Used is the number of bytes in use.
	Used uint64 `json:"used"`

	// Free is the number of bytes available to unprivileged users.
	Free uint64 `json:"free"`
}

// UsedPercent returns the used fraction of the filesystem as a percentage.
func (u Usage) UsedPercent() float64 {
	if u.Size == 0 {
		return 0
	}

	return float64(u.Used) / float64(u.Size) * 100
}

func (u Usage) String() string {
	if !u.Mounted {
		return "unmounted"
	}

	return fmt.Sprintf("%s used of %s (%.1f%%) at %s",
		HumanSize(u.Used), HumanSize(u.Size), u.UsedPercent(), u.MountPoint)
}
