// Package platform hides the OS differences in virtualenv layout and in
// applying permission bits to unpacked files.
package platform
