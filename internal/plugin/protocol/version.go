// Package protocol checks exporter plugin protocol versions against the host.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/scheming/pkg/plugin"
)

// MinCompatibleVersion is the oldest plugin protocol this build accepts.
const MinCompatibleVersion = "0.1.0"

// ErrIncompatible is wrapped by every rejection from Check.
var ErrIncompatible = errors.New("incompatible plugin protocol")

// Version is a parsed MAJOR.MINOR.PATCH protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a version string in "MAJOR.MINOR.PATCH" format.
func Parse(version string) (Version, error) {
	parts := strings.Split(strings.TrimPrefix(version, "v"), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", version)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version component %q in %s", p, version)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is Parse for compile-time constants.
func MustParse(version string) Version {
	v, err := Parse(version)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the string representation of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 as v is older than, equal to or newer than o.
func (v Version) Compare(o Version) int {
	for _, d := range [3]int{v.Major - o.Major, v.Minor - o.Minor, v.Patch - o.Patch} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// Current returns the protocol version spoken by this build.
func Current() Version {
	return MustParse(plugin.ProtocolVersion)
}

// Check reports whether a plugin speaking pluginVersion can be driven by
// this build. The major version must match exactly and the plugin may not
// be older than MinCompatibleVersion. Newer minor and patch versions are
// accepted.
func Check(pluginVersion string) error {
	pv, err := Parse(pluginVersion)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIncompatible, err)
	}

	current := Current()
	if pv.Major != current.Major {
		return fmt.Errorf("%w: incompatible major version: plugin is %s, scheming requires %d.x.x",
			ErrIncompatible, pv, current.Major)
	}
	if pv.Compare(MustParse(MinCompatibleVersion)) < 0 {
		return fmt.Errorf("%w: plugin version %s is too old, minimum required is %s",
			ErrIncompatible, pv, MinCompatibleVersion)
	}
	return nil
}
