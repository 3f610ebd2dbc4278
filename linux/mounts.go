//go:build linux
// +build linux

package linux

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	lvrebal "machinerun.io/lvrebal"
)

// MountTable returns the linux implementation of lvrebal.MountTable, backed
// by /proc/self/mounts and the mount/umount tools.
func MountTable() lvrebal.MountTable {
	return &linuxMounts{mountsPath: "/proc/self/mounts"}
}

type linuxMounts struct {
	mountsPath string
}

type mountEntry struct {
	Device     string
	MountPoint string
	FSType     string
}

// parseMounts parses /proc/self/mounts content. Octal escapes in paths
// (\040 for space and friends) are decoded.
func parseMounts(content string) []mountEntry {
	var mounts []mountEntry

	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}

		mounts = append(mounts, mountEntry{
			Device:     unescapeMountPath(fields[0]),
			MountPoint: unescapeMountPath(fields[1]),
			FSType:     fields[2],
		})
	}

	return mounts
}

func unescapeMountPath(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}

	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3

				continue
			}
		}

		b.WriteByte(s[i])
	}

	return b.String()
}

// MountPoint reports where devPath is mounted. Symlinks on both sides are
// resolved: /dev/vg/lv and /dev/mapper/vg-lv are the same device.
func (m *linuxMounts) MountPoint(devPath string) (string, bool, error) {
	content, err := os.ReadFile(m.mountsPath)
	if err != nil {
		return "", false, errors.Wrapf(err, "reading %s", m.mountsPath)
	}

	resolved := resolveDev(devPath)

	for _, entry := range parseMounts(string(content)) {
		if !strings.HasPrefix(entry.Device, "/dev/") {
			continue
		}

		if resolveDev(entry.Device) == resolved {
			return entry.MountPoint, true, nil
		}
	}

	return "", false, nil
}

func resolveDev(devPath string) string {
	if resolved, err := filepath.EvalSymlinks(devPath); err == nil {
		return resolved
	}

	return devPath
}

func (m *linuxMounts) Mount(devPath, target string) error {
	return runCommand("mount", devPath, target)
}

func (m *linuxMounts) Unmount(devPath string) error {
	return runCommand("umount", devPath)
}
