//go:build linux
// +build linux

package linux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUdevInfo(t *testing.T) {
	data := []byte(`P: /devices/virtual/block/dm-0
N: dm-0
S: disk/by-id/dm-name-vg0-data
S: disk/by-uuid/25df9069-80c7-46f4-a47c-305613c2cb6b
S: mapper/vg0-data
S: vg0/data
E: DEVLINKS=/dev/mapper/vg0-data /dev/disk/by-id/dm-name-vg0-data
E: DEVNAME=/dev/dm-0
E: ID_FS_TYPE=ext4
`)

	ast := assert.New(t)

	myInfo := UdevInfo{}
	ast.Nil(parseUdevInfo(data, &myInfo))

	ast.Equal(
		UdevInfo{
			Name:    "dm-0",
			SysPath: "/devices/virtual/block/dm-0",
			Symlinks: []string{
				"disk/by-id/dm-name-vg0-data",
				"disk/by-uuid/25df9069-80c7-46f4-a47c-305613c2cb6b",
				"mapper/vg0-data",
				"vg0/data",
			},
			Properties: map[string]string{
				"DEVLINKS":   "/dev/mapper/vg0-data /dev/disk/by-id/dm-name-vg0-data",
				"DEVNAME":    "/dev/dm-0",
				"ID_FS_TYPE": "ext4",
			},
		},
		myInfo)
}

func TestParseUdevInfoEncoded(t *testing.T) {
	data := []byte(`P: /devices/pci0000:00/..../block/sda
N: sda
S: disk/by-id/scsi-35000c500a0d8963f
E: DEVNAME=/dev/sda
E: DEVTYPE=disk
E: ID_MODEL=ST1000NX0453
E: ID_MODEL_ENC=ST\x2f1000NX0453\x20\x20\x20
E: ID_VENDOR_ENC=SEAGATE\x20
`)

	ast := assert.New(t)

	myInfo := UdevInfo{}
	ast.Nil(parseUdevInfo(data, &myInfo))

	ast.Equal("ST/1000NX0453", myInfo.Properties["ID_MODEL_ENC"])
	ast.Equal("SEAGATE", myInfo.Properties["ID_VENDOR_ENC"])
	ast.Equal("disk", myInfo.Properties["DEVTYPE"])
}
