// Package pkgname finds the distribution name of an unpacked python package.
//
// Static metadata (pyproject.toml, setup.cfg) is read directly. Packages that
// only declare their name in setup.py are handled by running a small helper
// with the runtime prefix's interpreter, which replaces setuptools.setup with
// a function that prints the name it receives.
package pkgname
