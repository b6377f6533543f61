package failure

import (
	"errors"
	"fmt"
)

// Category sentinels. A NonRecoverableError matches at most one of them.
var (
	ErrMissingSource     = errors.New("missing plugin source")
	ErrInvalidScheme     = errors.New("invalid url scheme")
	ErrInvalidPipVersion = errors.New("invalid pip version")
	ErrAcquisition       = errors.New("plugin acquisition failed")
	ErrCommandFailed     = errors.New("command failed")
	ErrPackageName       = errors.New("package name not found")
	ErrRegistration      = errors.New("daemon registration failed")
	ErrInvalidArguments  = errors.New("invalid install arguments")
)

// NonRecoverableError is a terminal failure carrying a human-readable message.
type NonRecoverableError struct {
	Msg string
	Err error
}

func (e *NonRecoverableError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "non-recoverable error"
	}
}

func (e *NonRecoverableError) Unwrap() error { return e.Err }

// New returns a NonRecoverableError in the given category. The category may be nil.
func New(category error, format string, args ...any) error {
	return &NonRecoverableError{Msg: fmt.Sprintf(format, args...), Err: category}
}

// Wrap marks err as non-recoverable, prefixing msg. If err already is
// non-recoverable its chain is kept so category checks still hold.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &NonRecoverableError{Msg: msg + ": " + err.Error(), Err: err}
}

// IsNonRecoverable reports whether any error in err's chain is a NonRecoverableError.
func IsNonRecoverable(err error) bool {
	var nr *NonRecoverableError
	return errors.As(err, &nr)
}
