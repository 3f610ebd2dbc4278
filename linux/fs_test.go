//go:build linux
// +build linux

package linux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResize2fsMin(t *testing.T) {
	ast := assert.New(t)

	out := []byte(`resize2fs 1.46.5 (30-Dec-2021)
Estimated minimum size of the filesystem: 1258291
`)

	blocks, err := parseResize2fsMin(out)
	ast.NoError(err)
	ast.Equal(uint64(1258291), blocks)

	_, err = parseResize2fsMin([]byte("resize2fs 1.46.5 (30-Dec-2021)\n"))
	ast.Error(err)
}

func TestParseExtBlockSize(t *testing.T) {
	ast := assert.New(t)

	out := []byte(`tune2fs 1.46.5 (30-Dec-2021)
Filesystem volume name:   <none>
Block count:              13107200
Block size:               4096
Fragment size:            4096
`)

	bs, err := parseExtBlockSize(out)
	ast.NoError(err)
	ast.Equal(uint64(4096), bs)

	_, err = parseExtBlockSize([]byte("tune2fs 1.46.5 (30-Dec-2021)\n"))
	ast.Error(err)
}

func TestCanShrink(t *testing.T) {
	ast := assert.New(t)
	fs := &linuxFS{}

	for _, fstype := range []string{"ext2", "ext3", "ext4", "btrfs"} {
		ast.True(fs.CanShrink(fstype), fstype)
	}

	for _, fstype := range []string{"xfs", "vfat", "swap", ""} {
		ast.False(fs.CanShrink(fstype), fstype)
	}

	ast.True(fs.CanShrinkOnline("btrfs"))
	ast.False(fs.CanShrinkOnline("ext4"))
	ast.False(fs.CanShrinkOnline("xfs"))
}
