package fqprep

import "os"

// FileExists checks that a path exists and is a regular file, not a
// directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// FileNonEmpty reports whether the path names a regular file with at least
// one byte of content.
func FileNonEmpty(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

// FileSize returns the size of the file in bytes, or 0 if it cannot be
// statted.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
