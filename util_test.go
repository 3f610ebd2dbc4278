package lvrebal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanSize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0.0B", HumanSize(0))
	assert.Equal("512.0B", HumanSize(512))
	assert.Equal("1.0K", HumanSize(1024))
	assert.Equal("117.7M", HumanSize(123456789))
	assert.Equal("10.0G", HumanSize(10*Gibibyte))
	assert.Equal("1.5T", HumanSize(Tebibyte+512*Gibibyte))
}

func TestParseSize(t *testing.T) {
	assert := assert.New(t)

	for _, td := range []struct {
		in       string
		expected uint64
	}{
		{"512", 512},
		{"512B", 512},
		{"4k", 4 * Kibibyte},
		{"10G", 10 * Gibibyte},
		{" 10 G ", 10 * Gibibyte},
		{"1.5T", Tebibyte + 512*Gibibyte},
		{"100M", 100 * Mebibyte},
	} {
		found, err := ParseSize(td.in)
		assert.NoError(err, "ParseSize(%q)", td.in)
		assert.Equal(td.expected, found, "ParseSize(%q)", td.in)
	}

	for _, bad := range []string{"", "  ", "zero", "-5G", "0", "G"} {
		_, err := ParseSize(bad)
		assert.Error(err, "ParseSize(%q) should fail", bad)
	}
}

func TestCeiling(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint64(0), Ceiling(0, 4))
	assert.Equal(uint64(4), Ceiling(1, 4))
	assert.Equal(uint64(4), Ceiling(4, 4))
	assert.Equal(DefaultExtentSize, Ceiling(DefaultExtentSize-1, DefaultExtentSize))
}

func TestFloor(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint64(0), Floor(3, 4))
	assert.Equal(uint64(4), Floor(4, 4))
	assert.Equal(uint64(4), Floor(7, 4))
	assert.Equal(uint64(0), Floor(DefaultExtentSize-1, DefaultExtentSize))
}
