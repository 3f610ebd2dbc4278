//go:build linux
// +build linux

package linux

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	lvrebal "machinerun.io/lvrebal"
)

// FSTool returns the linux implementation of lvrebal.FSTool, shelling out to
// the filesystem specific resize and check tools.
func FSTool() lvrebal.FSTool {
	return &linuxFS{}
}

type linuxFS struct{}

func isExt(fstype string) bool {
	switch fstype {
	case "ext2", "ext3", "ext4":
		return true
	}

	return false
}

func (fs *linuxFS) CanShrink(fstype string) bool {
	return isExt(fstype) || fstype == "btrfs"
}

func (fs *linuxFS) CanShrinkOnline(fstype string) bool {
	// Only btrfs supports reducing a mounted filesystem. ext4 grows
	// online but shrinks offline; xfs never shrinks.
	return fstype == "btrfs"
}

func (fs *linuxFS) UsageAt(mountPoint string) (lvrebal.Usage, error) {
	var stat unix.Statfs_t

	if err := unix.Statfs(mountPoint, &stat); err != nil {
		return lvrebal.Usage{}, errors.Wrapf(err, "statfs %s", mountPoint)
	}

	bsize := uint64(stat.Bsize)

	return lvrebal.Usage{
		Size: stat.Blocks * bsize,
		Used: (stat.Blocks - stat.Bfree) * bsize,
		Free: stat.Bavail * bsize,
	}, nil
}

// MinSize reports the smallest size the filesystem can shrink to. A mounted
// filesystem is measured with statfs; an unmounted ext filesystem is asked
// via resize2fs -P.
func (fs *linuxFS) MinSize(lv lvrebal.LV, mountPoint string) (uint64, error) {
	if mountPoint != "" {
		usage, err := fs.UsageAt(mountPoint)
		if err != nil {
			return 0, err
		}

		return usage.Used, nil
	}

	if !isExt(lv.FSType) {
		return 0, fmt.Errorf(
			"cannot estimate minimum size of unmounted %s filesystem on %s",
			lv.FSType, lv.Path)
	}

	blockSize, err := extBlockSize(lv.Path)
	if err != nil {
		return 0, err
	}

	out, stderr, rc := runCommandWithOutputErrorRc("resize2fs", "-P", lv.Path)
	if rc != 0 {
		return 0, cmdError([]string{"resize2fs", "-P", lv.Path}, out, stderr, rc)
	}

	blocks, err := parseResize2fsMin(out)
	if err != nil {
		return 0, err
	}

	return blocks * blockSize, nil
}

// parseResize2fsMin extracts the block count from resize2fs -P output:
//   Estimated minimum size of the filesystem: 1258291
func parseResize2fsMin(out []byte) (uint64, error) {
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "minimum size") {
			continue
		}

		fields := strings.Fields(line)

		return strconv.ParseUint(fields[len(fields)-1], 10, 64)
	}

	return 0, fmt.Errorf("no minimum size in resize2fs output: %s", out)
}

// parseExtBlockSize extracts the block size from tune2fs -l output.
func parseExtBlockSize(out []byte) (uint64, error) {
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "Block size:") {
			continue
		}

		fields := strings.Fields(line)

		return strconv.ParseUint(fields[len(fields)-1], 10, 64)
	}

	return 0, fmt.Errorf("no block size in tune2fs output: %s", out)
}

func extBlockSize(devPath string) (uint64, error) {
	out, stderr, rc := runCommandWithOutputErrorRc("tune2fs", "-l", devPath)
	if rc != 0 {
		return 0, cmdError([]string{"tune2fs", "-l", devPath}, out, stderr, rc)
	}

	return parseExtBlockSize(out)
}

// Check runs an offline consistency check. The volume must be unmounted.
func (fs *linuxFS) Check(lv lvrebal.LV) error {
	switch {
	case isExt(lv.FSType):
		// e2fsck exits 1 when it corrected errors, which leaves the
		// filesystem consistent. Anything above that is a failure.
		out, rc := runCommandWithRc("e2fsck", "-f", "-p", lv.Path)
		if rc > 1 {
			return fmt.Errorf("e2fsck on %s failed [%d]: %s", lv.Path, rc, out)
		}

		return nil
	case lv.FSType == "btrfs":
		return runCommand("btrfs", "check", "--readonly", lv.Path)
	case lv.FSType == "xfs":
		return runCommand("xfs_repair", "-n", lv.Path)
	}

	return fmt.Errorf("no consistency check for %q on %s", lv.FSType, lv.Path)
}

// Shrink reduces the filesystem to newSize bytes. Online shrink resizes the
// mounted filesystem in place (btrfs only); offline shrink expects the
// volume unmounted and checked.
func (fs *linuxFS) Shrink(lv lvrebal.LV, newSize uint64, online bool, mountPoint string) error {
	if online {
		if lv.FSType != "btrfs" {
			return fmt.Errorf("%s cannot shrink online", lv.FSType)
		}

		return runCommand("btrfs", "filesystem", "resize",
			fmt.Sprintf("%d", newSize), mountPoint)
	}

	if isExt(lv.FSType) {
		// resize2fs accepts a suffixed size; the plan's delta is extent
		// aligned so newSize is always whole KiB.
		return runCommand("resize2fs", lv.Path,
			fmt.Sprintf("%dK", newSize/lvrebal.Kibibyte))
	}

	return fmt.Errorf("cannot shrink %q on %s", lv.FSType, lv.Path)
}

// Grow expands the filesystem to fill its device.
func (fs *linuxFS) Grow(lv lvrebal.LV, mountPoint string) error {
	switch {
	case isExt(lv.FSType):
		// resize2fs with no size grows to the device size, mounted or not.
		return runCommand("resize2fs", lv.Path)
	case lv.FSType == "xfs":
		if mountPoint == "" {
			return fmt.Errorf("xfs on %s only grows while mounted", lv.Path)
		}

		return runCommand("xfs_growfs", mountPoint)
	case lv.FSType == "btrfs":
		if mountPoint == "" {
			return fmt.Errorf("btrfs on %s only resizes while mounted", lv.Path)
		}

		return runCommand("btrfs", "filesystem", "resize", "max", mountPoint)
	}

	return fmt.Errorf("cannot grow %q on %s", lv.FSType, lv.Path)
}
