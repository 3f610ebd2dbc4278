// Package lvrebal rebalances space between lvm logical volumes: it safely
// shrinks a source volume's filesystem and logical volume, verifies the
// freed extents landed in the volume group's free pool, then extends a
// target volume and grows its filesystem to match.
package lvrebal

// VolumeManager provides the logical volume operations the rebalancer needs:
// scanning volume groups and volumes, and resizing a named volume.
type VolumeManager interface {
	// ScanVGs scans the system for all the VGs and returns the set of VGs
	// that are accepted by the filter function.
	ScanVGs(filter VGFilter) (VGSet, error)

	// ScanLVs scans the system for all the LVs and returns the set of LVs
	// that are accepted by the filter function, keyed by vg/lv name.
	ScanLVs(filter LVFilter) (LVSet, error)

	// ReduceLV shrinks the named LV to newSize bytes. The filesystem on the
	// volume must already have been shrunk to at most newSize.
	ReduceLV(vgName, lvName string, newSize uint64) error

	// ExtendLV grows the named LV to newSize bytes. Fails if the volume
	// group does not hold enough free extents.
	ExtendLV(vgName, lvName string, newSize uint64) error
}

// FSTool provides filesystem level operations: usage queries, consistency
// checking and resizing. Implementations dispatch on the volume's FSType.
type FSTool interface {
	// UsageAt reports usage of the filesystem mounted at mountPoint.
	UsageAt(mountPoint string) (Usage, error)

	// MinSize returns the smallest size in bytes the filesystem on lv can
	// be shrunk to. mountPoint is the current mount point, empty if the
	// volume is not mounted.
	MinSize(lv LV, mountPoint string) (uint64, error)

	// CanShrink returns true if the filesystem type supports shrinking.
	CanShrink(fstype string) bool

	// CanShrinkOnline returns true if the filesystem type supports
	// shrinking while mounted.
	CanShrinkOnline(fstype string) bool

	// Check runs an offline consistency check on the volume. A returned
	// error means the filesystem is not known to be consistent and no
	// resize must be attempted.
	Check(lv LV) error

	// Shrink reduces the filesystem on lv to newSize bytes. If online is
	// true the filesystem is mounted at mountPoint and is resized live.
	Shrink(lv LV, newSize uint64, online bool, mountPoint string) error

	// Grow expands the filesystem on lv to fill the device. mountPoint is
	// the current mount point, empty if unmounted; some filesystems can
	// only grow while mounted.
	Grow(lv LV, mountPoint string) error
}

// MountTable answers whether a device is mounted and performs mount and
// unmount of devices.
type MountTable interface {
	// MountPoint returns where the device is mounted. The bool is false
	// if the device is not in the mount table.
	MountPoint(devPath string) (string, bool, error)

	// Mount mounts the device at target.
	Mount(devPath, target string) error

	// Unmount unmounts the device.
	Unmount(devPath string) error
}

// Config carries the explicit configuration of a rebalancer run. There is no
// implicit state: no environment lookups, no working directory changes.
type Config struct {
	// VGName restricts scans to the named volume group. Empty scans all.
	VGName string

	// LockDir is the directory advisory per-VG lock files are kept in.
	LockDir string

	// DryRun executes the plan against an in-memory model of the scanned
	// system instead of mutating it.
	DryRun bool
}
