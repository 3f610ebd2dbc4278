//go:build linux
// +build linux

package linux

import (
	"fmt"
	"path"

	lvrebal "machinerun.io/lvrebal"
)

// VolumeManager returns the linux implementation of lvrebal.VolumeManager,
// backed by the lvm command line tools.
func VolumeManager() lvrebal.VolumeManager {
	return &linuxLVM{udev: newUdevCache()}
}

type linuxLVM struct {
	udev *udevCache
}

func (d *lvmLVData) toLV() lvrebal.LV {
	return lvrebal.LV{
		Name:   d.Name,
		VGName: d.VGName,
		Path:   d.Path,
		Size:   d.Size,
		Active: d.Active,
	}
}

func (ls *linuxLVM) ScanLVs(filter lvrebal.LVFilter) (lvrebal.LVSet, error) {
	lvs := lvrebal.LVSet{}

	lvdatum, err := getLvReport()
	if err != nil {
		return lvs, err
	}

	for _, lvd := range lvdatum {
		lv := lvd.toLV()
		lv.FSType = ls.udev.FSType(lv.Path)

		if filter == nil || filter(lv) {
			lvs[lv.FullName()] = lv
		}
	}

	return lvs, nil
}

func (ls *linuxLVM) ScanVGs(filter lvrebal.VGFilter) (lvrebal.VGSet, error) {
	vgs := lvrebal.VGSet{}

	vgdatum, err := getVgReport()
	if err != nil {
		return vgs, err
	}

	lvs, err := ls.ScanLVs(nil)
	if err != nil {
		return vgs, err
	}

	pvdatum, err := getPvReport()
	if err != nil {
		return vgs, err
	}

	for _, vgd := range vgdatum {
		vg := lvrebal.VG{
			Name:       vgd.Name,
			Size:       vgd.Size,
			FreeSpace:  vgd.Free,
			ExtentSize: vgd.ExtentSize,
			Volumes:    lvrebal.LVSet{},
			PVs:        lvrebal.PVSet{},
		}

		for _, lv := range lvs {
			if lv.VGName == vg.Name {
				vg.Volumes[lv.Name] = lv
			}
		}

		for _, pvd := range pvdatum {
			if pvd.VGName != vg.Name {
				continue
			}

			pv := lvrebal.PV{
				Path:     pvd.Path,
				Name:     path.Base(pvd.Path),
				VGName:   pvd.VGName,
				Size:     pvd.Size,
				FreeSize: pvd.Free,
			}
			vg.PVs[pv.Name] = pv
		}

		if filter == nil || filter(vg) {
			vgs[vg.Name] = vg
		}
	}

	return vgs, nil
}

// ReduceLV shrinks the named LV to newSize. The caller is responsible for
// having shrunk the filesystem below newSize first.
func (ls *linuxLVM) ReduceLV(vgName, lvName string, newSize uint64) error {
	return runCommand(
		"lvm", "lvreduce",
		"--force",
		fmt.Sprintf("--size=%dB", newSize),
		vgLv(vgName, lvName))
}

// ExtendLV grows the named LV to newSize. lvextend fails when the volume
// group cannot satisfy the request; the size is never silently adjusted.
func (ls *linuxLVM) ExtendLV(vgName, lvName string, newSize uint64) error {
	return runCommand(
		"lvm", "lvextend",
		fmt.Sprintf("--size=%dB", newSize),
		vgLv(vgName, lvName))
}

func vgLv(vgName, lvName string) string {
	return path.Join(vgName, lvName)
}
