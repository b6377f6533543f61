package pip

import (
	"context"
	"strings"
)

// Detector decides the capability tier of the pip in a runtime prefix.
// A non-empty Override is used instead of asking pip.
type Detector struct {
	Pip      *Pip
	Override string
}

// Version returns the override, or the version reported by pip --version.
func (d Detector) Version(ctx context.Context) (string, error) {
	if v := strings.TrimSpace(d.Override); v != "" {
		return v, nil
	}
	if d.Pip == nil {
		_, err := ParseVersion("")
		return "", err
	}
	return d.Pip.Version(ctx)
}

// Tier returns TierModern for pip 6 and newer, TierLegacy otherwise.
func (d Detector) Tier(ctx context.Context) (Tier, error) {
	v, err := d.Version(ctx)
	if err != nil {
		return TierLegacy, err
	}
	return TierOf(v)
}
