//go:build !linux

package writer

func freeBytesPlatform(path string) (int64, error) {
	return 0, ErrDiskSpaceUnknown
}
