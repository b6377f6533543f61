// Package failure defines the single error kind raised by the installer.
// Every failure is non-recoverable: the orchestration engine must not retry
// an operation that returned one. Category sentinels let callers tell the
// failures apart with errors.Is.
package failure
