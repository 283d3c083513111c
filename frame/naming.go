package frame

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultDelay is the per-frame delay written when none is given.
const DefaultDelay = 30 * time.Millisecond

// fileNamePattern matches frame_<index>_delay-<seconds>s.<ext>.
var fileNamePattern = regexp.MustCompile(`^frame_(\d+)_delay-(\d+(?:\.\d+)?)s(\.[A-Za-z0-9]+)$`)

// FileInfo is the metadata encoded in a frame file name.
type FileInfo struct {
	Name  string
	Index int
	Delay time.Duration
	Ext   string // lower case, with leading dot
}

// FileName returns the file name for a frame. ext may be given with or
// without the leading dot.
func FileName(index int, delay time.Duration, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("frame_%03d_delay-%ss%s", index, FormatSeconds(delay), strings.ToLower(ext))
}

// FormatSeconds formats d as a decimal number of seconds without trailing zeros.
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// ParseFileName decodes a frame file name. Names that do not follow the
// frame naming scheme yield an ErrValidation error.
func ParseFileName(name string) (FileInfo, error) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return FileInfo{}, fmt.Errorf("%w: %q is not a frame file name", ErrValidation, name)
	}
	index, err := strconv.Atoi(m[1])
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: frame index in %q: %v", ErrValidation, name, err)
	}
	delay, err := time.ParseDuration(m[2] + "s")
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: frame delay in %q: %v", ErrValidation, name, err)
	}
	return FileInfo{
		Name:  name,
		Index: index,
		Delay: delay,
		Ext:   strings.ToLower(m[3]),
	}, nil
}
