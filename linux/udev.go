//go:build linux
// +build linux

package linux

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// UdevInfo captures the udev information about a block device.
type UdevInfo struct {
	// Name of the device.
	Name string

	// SysPath is the system path of this device.
	SysPath string

	// Symlinks for the device.
	Symlinks []string

	// Properties is udev information as a map of key, value pairs.
	Properties map[string]string
}

// GetUdevInfo return a UdevInfo for the device with kernel name kname.
func GetUdevInfo(kname string) (UdevInfo, error) {
	out, stderr, rc := runCommandWithOutputErrorRc(
		"udevadm", "info", "--query=all", "--export", "--name="+kname)

	info := UdevInfo{Name: kname}

	if rc != 0 {
		return info,
			fmt.Errorf("error querying kname '%s' [%d]: %s", kname, rc, stderr)
	}

	return info, parseUdevInfo(out, &info)
}

func parseUdevInfo(out []byte, info *UdevInfo) error {
	var toks [][]byte
	var payload, s string
	var err error

	if info.Properties == nil {
		info.Properties = map[string]string{}
	}

	for _, line := range bytes.Split(out, []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		toks = bytes.SplitN(line, []byte(": "), 2)
		payload = string(toks[1])

		switch toks[0][0] {
		case 'P':
			info.SysPath = payload
		case 'N':
			info.Name = payload
		case 'S':
			info.Symlinks = append(info.Symlinks, strings.Split(payload, " ")...)
		case 'E':
			kv := strings.SplitN(payload, "=", 2)
			// use of Unquote is to decode \x20, \x2f and friends.
			// example: ID_MODEL_ENC=Integrated\x20Camera
			// and values often have trailing whitespace.
			s, err = strconv.Unquote("\"" + kv[1] + "\"")
			if err != nil {
				return fmt.Errorf("failed to unquote %#v: %s", kv[1], err)
			}

			info.Properties[kv[0]] = strings.TrimSpace(s)
		default:
			return fmt.Errorf("error parsing line: %v", line)
		}
	}

	return nil
}

// udev properties are stable for the lifetime of a run; volume sizes are
// not. Only properties go through this cache, sizes are always re-scanned.
const udevCacheTTL = 30 * time.Second

type udevCache struct {
	c *cache.Cache
}

func newUdevCache() *udevCache {
	return &udevCache{c: cache.New(udevCacheTTL, udevCacheTTL)}
}

// Info returns the (possibly cached) udev info for a device path.
func (u *udevCache) Info(devPath string) (UdevInfo, error) {
	if cached, found := u.c.Get(devPath); found {
		return cached.(UdevInfo), nil
	}

	info, err := GetUdevInfo(devPath)
	if err != nil {
		return info, err
	}

	u.c.Set(devPath, info, cache.DefaultExpiration)

	return info, nil
}

// FSType reports the filesystem type on the device, empty when unknown.
func (u *udevCache) FSType(devPath string) string {
	info, err := u.Info(devPath)
	if err != nil {
		return ""
	}

	return info.Properties["ID_FS_TYPE"]
}

// Model reports the hardware model string of the device, empty when unknown.
func (u *udevCache) Model(devPath string) string {
	info, err := u.Info(devPath)
	if err != nil {
		return ""
	}

	return info.Properties["ID_MODEL"]
}
