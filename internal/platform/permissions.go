package platform

import (
	"os"
	"runtime"
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// ArchiveMode narrows a mode recorded in an archive to the permission bits
// that are safe to apply to an unpacked file. Entries without any recorded
// bits get def.
func ArchiveMode(recorded, def os.FileMode) os.FileMode {
	perm := recorded.Perm() &^ 0o022
	if perm == 0 {
		return def
	}
	// Owner must always be able to read and remove what was unpacked.
	return perm | 0o600
}
