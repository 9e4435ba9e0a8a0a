//go:build linux

package writer

import "golang.org/x/sys/unix"

// freeBytesPlatform statvfs(2)s the filesystem holding path and reports
// bytes available to an unprivileged writer, grounded on
// distr1-distri's use of golang.org/x/sys/unix for raw syscall access.
func freeBytesPlatform(path string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}

	return int64(stat.Bavail) * int64(stat.Bsize), nil
}
