package lvrebal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Size constants for binary (IEC) prefixes.
const (
	Byte     uint64 = 1
	Kibibyte        = 1024 * Byte
	Mebibyte        = 1024 * Kibibyte
	Gibibyte        = 1024 * Mebibyte
	Tebibyte        = 1024 * Gibibyte
)

// DefaultExtentSize is the lvm default physical extent size. The real extent
// size of a volume group is read from its report; this is only a fallback.
const DefaultExtentSize = 4 * Mebibyte

// HumanSize renders a byte count with a binary prefix, e.g. 123456789
// becomes "117.7M".
func HumanSize(b uint64) string {
	val := float64(b)

	for _, unit := range []string{"B", "K", "M", "G", "T", "P"} {
		if val < 1024 {
			return fmt.Sprintf("%.1f%s", val, unit)
		}

		val /= 1024
	}

	return fmt.Sprintf("%.1fE", val)
}

// ParseSize parses a human size string like "512", "10G" or "1.5T" into
// bytes. Suffixes use binary prefixes. An empty string or a non-positive
// value is an error.
func ParseSize(s string) (uint64, error) {
	orig := strings.TrimSpace(s)
	if orig == "" {
		return 0, errors.New("empty size")
	}

	mult := Byte
	suffixes := []struct {
		letter string
		mult   uint64
	}{
		{"B", Byte}, {"K", Kibibyte}, {"M", Mebibyte},
		{"G", Gibibyte}, {"T", Tebibyte},
	}

	num := orig
	up := strings.ToUpper(orig)

	for _, s := range suffixes {
		if strings.HasSuffix(up, s.letter) {
			mult = s.mult
			num = strings.TrimSpace(orig[:len(orig)-1])

			break
		}
	}

	val, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot parse size %q", orig)
	}

	if val <= 0 {
		return 0, fmt.Errorf("size %q is not positive", orig)
	}

	return uint64(val * float64(mult)), nil
}

// Ceiling returns the smallest integer equal to or larger than val that is
// evenly divisible by unit.
func Ceiling(val, unit uint64) uint64 {
	if val%unit == 0 {
		return val
	}

	return ((val + unit) / unit) * unit
}

// Floor returns the largest integer equal to or less than val that is evenly
// divisible by unit.
func Floor(val, unit uint64) uint64 {
	if val%unit == 0 {
		return val
	}

	return (val / unit) * unit
}
