// Package fetch acquires a plugin package into a scratch directory.
//
// The unpack routine depends on the capability tier of the virtualenv's pip:
// pip 6 and later get a native HTTP download followed by an in-process
// unpack, older pip is asked to download and unpack the package itself.
// Whatever happens, a failed acquisition leaves no scratch directory behind.
package fetch
