//go:build linux
// +build linux

package linux

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/rekby/gpt"
	"github.com/rekby/mbr"
	lvrebal "machinerun.io/lvrebal"
)

// TableType names a partition table format.
type TableType string

const (
	// TableGPT - GUID partition table.
	TableGPT TableType = "gpt"

	// TableMBR - legacy DOS partition table.
	TableMBR TableType = "dos"

	// TableNone - no recognizable partition table.
	TableNone TableType = "none"
)

// ErrNoPartitionTable is returned when neither a GPT nor an MBR is present.
var ErrNoPartitionTable = errors.New("no partition table found")

const (
	sectorSize512 = 512
	sectorSize4k  = 4096
)

// DeviceInfo is one row of the devices report: a block device backing a PV,
// with its partition table, identity and usage.
type DeviceInfo struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	VGName     string    `json:"vgName"`
	Table      TableType `json:"table"`
	DiskGUID   string    `json:"diskGUID,omitempty"`
	Model      string    `json:"model,omitempty"`
	FSType     string    `json:"fsType,omitempty"`
	Size       uint64    `json:"size"`
	MountPoint string    `json:"mountPoint,omitempty"`
	Used       uint64    `json:"used"`
	Avail      uint64    `json:"avail"`
}

type deviceScanner struct {
	udev   *udevCache
	mounts lvrebal.MountTable
	fs     lvrebal.FSTool
}

// ScanDevices builds the devices report for a set of PVs: one DeviceInfo
// per PV, ordered by device path.
func ScanDevices(pvs lvrebal.PVSet) ([]DeviceInfo, error) {
	ds := &deviceScanner{
		udev:   newUdevCache(),
		mounts: MountTable(),
		fs:     FSTool(),
	}

	return ds.scan(pvs)
}

func (ds *deviceScanner) scan(pvs lvrebal.PVSet) ([]DeviceInfo, error) {
	devices := make([]DeviceInfo, 0, len(pvs))

	for _, pv := range pvs {
		info, err := ds.scanOne(pv)
		if err != nil {
			return nil, errors.Wrapf(err, "scanning %s", pv.Path)
		}

		devices = append(devices, info)
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Path < devices[j].Path
	})

	return devices, nil
}

func (ds *deviceScanner) scanOne(pv lvrebal.PV) (DeviceInfo, error) {
	info := DeviceInfo{
		Name:   pv.Name,
		Path:   pv.Path,
		VGName: pv.VGName,
		Size:   pv.Size,
		Table:  TableNone,
		FSType: ds.udev.FSType(pv.Path),
		Model:  ds.udev.Model(pv.Path),
	}

	fp, err := os.Open(pv.Path)
	if err != nil {
		return info, err
	}
	defer fp.Close()

	table, guid, err := identifyTable(fp)
	if err != nil && err != ErrNoPartitionTable {
		return info, err
	}

	if err == nil {
		info.Table = table
		info.DiskGUID = guid
	}

	mp, mounted, err := ds.mounts.MountPoint(pv.Path)
	if err != nil {
		return info, err
	}

	// Usage only for real mount points; pseudo entries like [SWAP] have
	// nothing to statfs.
	if mounted && !isPseudoMount(mp) {
		info.MountPoint = mp

		if usage, err := ds.fs.UsageAt(mp); err == nil {
			info.Used = usage.Used
			info.Avail = usage.Free
		}
	}

	return info, nil
}

func isPseudoMount(mp string) bool {
	return len(mp) == 0 || mp[0] == '['
}

// identifyTable reports the partition table type on the device, and for GPT
// the disk GUID. GPT headers are looked for at both common sector sizes.
func identifyTable(fp io.ReadSeeker) (TableType, string, error) {
	const noGptFound = "Bad GPT signature"

	for _, size := range []uint64{sectorSize512, sectorSize4k} {
		if _, err := fp.Seek(int64(size), io.SeekStart); err != nil {
			return TableNone, "", err
		}

		table, err := gpt.ReadTable(fp, size)
		if err != nil {
			if err.Error() == noGptFound {
				continue
			}

			return TableNone, "", err
		}

		guid := lvrebal.GUIDToString(lvrebal.GUID(table.Header.DiskGUID))

		return TableGPT, guid, nil
	}

	if _, err := fp.Seek(0, io.SeekStart); err != nil {
		return TableNone, "", err
	}

	if _, err := mbr.Read(fp); err != nil {
		if err == mbr.ErrorBadMbrSign {
			return TableNone, "", ErrNoPartitionTable
		}

		return TableNone, "", err
	}

	return TableMBR, "", nil
}
