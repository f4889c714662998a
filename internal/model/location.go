package model

import (
	"fmt"
	"strings"
)

// Role is the part a root plays in a comparison.
type Role int

const (
	Base Role = iota
	Local
	Remote
)

const NumRoles = 3

var Roles = [NumRoles]Role{Base, Local, Remote}

func (r Role) String() string {
	switch r {
	case Base:
		return "base"
	case Local:
		return "local"
	case Remote:
		return "remote"
	default:
		return "unknown"
	}
}

func (r Role) Location() Location {
	return Location(1 << r)
}

// Location is the set of roots holding an entry at a node's relative path.
type Location uint8

const (
	OnBase   Location = 1 << Base
	OnLocal  Location = 1 << Local
	OnRemote Location = 1 << Remote

	OnLocalRemote Location = OnLocal | OnRemote
	OnAll3        Location = OnBase | OnLocal | OnRemote
)

func (l Location) Has(r Role) bool {
	return l&r.Location() != 0
}

func (l Location) Count() int {
	n := 0
	for _, r := range Roles {
		if l.Has(r) {
			n++
		}
	}
	return n
}

func (l Location) String() string {
	if l == 0 {
		return "none"
	}

	var parts []string
	for _, r := range Roles {
		if l.Has(r) {
			parts = append(parts, r.String())
		}
	}
	return strings.Join(parts, "|")
}

func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (l *Location) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "none" {
		*l = 0
		return nil
	}

	var loc Location
	for _, part := range strings.Split(s, "|") {
		r, err := ParseRole(part)
		if err != nil {
			return fmt.Errorf("invalid location %q: %w", s, err)
		}
		loc |= r.Location()
	}
	*l = loc
	return nil
}

// Mode selects which roots take part in a comparison.
type Mode int

const (
	TwoWay Mode = iota
	ThreeWay
)

func (m Mode) String() string {
	if m == ThreeWay {
		return "three-way"
	}
	return "two-way"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "two-way":
		*m = TwoWay
	case "three-way":
		*m = ThreeWay
	default:
		return fmt.Errorf("unknown mode %q", text)
	}
	return nil
}

// Roots returns the set of roles enabled by the mode.
func (m Mode) Roots() Location {
	if m == ThreeWay {
		return OnAll3
	}
	return OnLocalRemote
}

func (m Mode) Mask() ModeMask {
	return 1 << m
}

// ModeMask is the set of modes a processor applies to.
type ModeMask uint8

const (
	MaskTwoWay   ModeMask = 1 << TwoWay
	MaskThreeWay ModeMask = 1 << ThreeWay
	MaskAll      ModeMask = MaskTwoWay | MaskThreeWay
)

func (mm ModeMask) Has(m Mode) bool {
	return mm&m.Mask() != 0
}
