package platform

import "runtime"

// VenvBinDir returns the name of the directory inside a virtualenv that holds
// its executables.
func VenvBinDir() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

// ExecutableName returns name with the platform executable suffix.
func ExecutableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}
