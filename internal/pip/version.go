package pip

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/agentx-labs/plugin-installer/internal/failure"
)

// Tier is the capability class of an installed pip.
type Tier int

const (
	// TierLegacy is pip older than 6, which can only unpack through its own
	// requirement machinery.
	TierLegacy Tier = iota
	// TierModern is pip 6 or higher.
	TierModern
)

func (t Tier) String() string {
	if t == TierModern {
		return "modern"
	}
	return "legacy"
}

// Version holds the dot-delimited components of a pip version string.
// Major and Minor are always numeric; Micro is kept verbatim and may be empty.
type Version struct {
	Major string
	Minor string
	Micro string
}

func (v Version) String() string {
	s := v.Major + "." + v.Minor
	if v.Micro != "" {
		s += "." + v.Micro
	}
	return s
}

var pip6 = mustConstraint(">= 6.0.0")

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// ParseVersion splits a pip version string into its components.
func ParseVersion(version string) (Version, error) {
	if version == "" {
		return Version{}, failure.New(failure.ErrInvalidPipVersion, "Failed to get pip version")
	}

	if !strings.Contains(version, ".") {
		return Version{}, failure.New(failure.ErrInvalidPipVersion,
			"Unknown formatting of pip version: %q, expected dot-delimited numbers (e.g. \"1.5.4\", \"6.0\")", version)
	}

	parts := strings.Split(version, ".")
	v := Version{Major: parts[0], Minor: parts[1]}
	if len(parts) > 2 {
		v.Micro = parts[2]
	}

	if !isDigits(v.Major) {
		return Version{}, failure.New(failure.ErrInvalidPipVersion,
			"Invalid pip version: %q, major version is %q while expected to be a number", version, v.Major)
	}
	if !isDigits(v.Minor) {
		return Version{}, failure.New(failure.ErrInvalidPipVersion,
			"Invalid pip version: %q, minor version is %q while expected to be a number", version, v.Minor)
	}

	return v, nil
}

// Semver returns the numeric major.minor part as a semantic version.
// Components too large for a uint64 saturate at math.MaxUint64.
func (v Version) Semver() (*semver.Version, error) {
	major, err := parseComponent(v.Major)
	if err != nil {
		return nil, fmt.Errorf("parsing major version %q: %w", v.Major, err)
	}
	minor, err := parseComponent(v.Minor)
	if err != nil {
		return nil, fmt.Errorf("parsing minor version %q: %w", v.Minor, err)
	}
	return semver.New(major, minor, 0, "", ""), nil
}

func parseComponent(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxUint64, nil
	}
	return n, err
}

// IsPip6OrHigher reports whether version's major component is 6 or more.
func IsPip6OrHigher(version string) (bool, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return false, err
	}
	sv, err := v.Semver()
	if err != nil {
		return false, failure.New(failure.ErrInvalidPipVersion, "Invalid pip version: %q: %v", version, err)
	}
	return pip6.Check(sv), nil
}

// TierOf returns the capability tier of version.
func TierOf(version string) (Tier, error) {
	modern, err := IsPip6OrHigher(version)
	if err != nil {
		return TierLegacy, err
	}
	if modern {
		return TierModern, nil
	}
	return TierLegacy, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
