package pantree

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a PAN-OS software version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "10.2.3" or "10.2.3-h4" forms. Hotfix suffixes are
// ignored.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s = s[:i]
	}

	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("pantree: malformed version %q", s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("pantree: malformed version %q", s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast reports whether v is other or newer.
func (v Version) AtLeast(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor > other.Minor
	}
	return v.Patch >= other.Patch
}

// IsZero reports whether the version is unset.
func (v Version) IsZero() bool {
	return v == Version{}
}

// kindSchema describes how a kind contributes to xpath composition.
type kindSchema struct {
	// Container is the path fragment under the parent, e.g. "address".
	Container string

	// Named entries append /entry[@name='...'] after the container.
	Named bool
}

// kindSchemas is the static schema table. Kind selection is a plain lookup;
// no dynamic type resolution happens anywhere in the package.
var kindSchemas = map[Kind]kindSchema{
	KindVsys:          {Container: "vsys", Named: true},
	KindDeviceGroup:   {Container: "device-group", Named: true},
	KindAddressObject: {Container: "address", Named: true},
	KindAddressGroup:  {Container: "address-group", Named: true},
	KindTag:           {Container: "tag", Named: true},
	KindSecurityRule:  {Container: "rulebase/security/rules", Named: true},
}

func schemaFor(kind Kind) kindSchema {
	if s, ok := kindSchemas[kind]; ok {
		return s
	}
	// Unknown kinds contribute only their kind name; keeps xpaths
	// well-formed for kinds added by callers.
	return kindSchema{Container: string(kind), Named: true}
}
