//go:build linux

package selection

import (
	"os"
	"path/filepath"
	"strconv"
)

// executable resolves /proc/<pid>/exe. The link target is returned verbatim,
// including the " (deleted)" suffix the kernel appends for replaced binaries,
// so an upgraded-but-still-running executable never matches a list entry.
func executable(procRoot string, pid uint32) (string, error) {
	return os.Readlink(filepath.Join(procRoot, strconv.FormatUint(uint64(pid), 10), "exe"))
}
