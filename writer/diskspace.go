package writer

import "errors"

// ErrDiskSpaceUnknown is returned by FreeBytes on platforms without a
// statvfs-equivalent wired in; the full-disk policy treats it as
// "can't check, proceed."
var ErrDiskSpaceUnknown = errors.New("evio: free disk space check unavailable on this platform")

// FreeBytes reports bytes available to an unprivileged writer on the
// filesystem holding path, for the full-disk policy of spec §4.8. The
// Linux build uses statvfs via golang.org/x/sys/unix; other platforms
// return ErrDiskSpaceUnknown.
func FreeBytes(path string) (int64, error) {
	return freeBytesPlatform(path)
}
