package model

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strings"
)

// Modifier is a single declaration modifier. Values are distinct bits so a
// ModifierSet can hold any combination.
type Modifier uint16

const (
	Public Modifier = 1 << iota
	Protected
	Private
	Static
	Final
	Abstract
	Transient
	Volatile
	Synchronized
)

// modifierOrder fixes the rendering order of a set.
var modifierOrder = [...]struct {
	m    Modifier
	name string
}{
	{Public, "public"},
	{Protected, "protected"},
	{Private, "private"},
	{Abstract, "abstract"},
	{Static, "static"},
	{Final, "final"},
	{Transient, "transient"},
	{Volatile, "volatile"},
	{Synchronized, "synchronized"},
}

func (m Modifier) String() string {
	for _, e := range modifierOrder {
		if e.m == m {
			return e.name
		}
	}
	return fmt.Sprintf("modifier(%d)", uint16(m))
}

// ParseModifier accepts a modifier name in any letter case.
func ParseModifier(s string) (Modifier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, e := range modifierOrder {
		if e.name == name {
			return e.m, nil
		}
	}
	return 0, fmt.Errorf("unknown modifier %q", s)
}

// ModifierSet is a set of modifiers. Equality of two sets is equality of
// their bits, i.e. an empty symmetric difference.
type ModifierSet uint16

func NewModifierSet(ms ...Modifier) ModifierSet {
	var s ModifierSet
	for _, m := range ms {
		s |= ModifierSet(m)
	}
	return s
}

func (s ModifierSet) Has(m Modifier) bool { return s&ModifierSet(m) != 0 }

// Equal reports whether s and o contain exactly the same modifiers.
func (s ModifierSet) Equal(o ModifierSet) bool { return s^o == 0 }

func (s ModifierSet) Len() int { return bits.OnesCount16(uint16(s)) }

func (s ModifierSet) Names() []string {
	out := make([]string, 0, s.Len())
	for _, e := range modifierOrder {
		if s.Has(e.m) {
			out = append(out, e.name)
		}
	}
	return out
}

func (s ModifierSet) String() string { return "{" + strings.Join(s.Names(), ", ") + "}" }

// ParseModifierSet builds a set from names and rejects unknown or repeated
// modifiers.
func ParseModifierSet(names []string) (ModifierSet, error) {
	var s ModifierSet
	for _, n := range names {
		m, err := ParseModifier(n)
		if err != nil {
			return 0, err
		}
		if s.Has(m) {
			return 0, fmt.Errorf("duplicate modifier %q", m)
		}
		s |= ModifierSet(m)
	}
	return s, nil
}

func (s ModifierSet) MarshalJSON() ([]byte, error) { return json.Marshal(s.Names()) }

func (s *ModifierSet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	parsed, err := ParseModifierSet(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s ModifierSet) MarshalYAML() (any, error) { return s.Names(), nil }

// UnmarshalYAML implements the yaml.v3 obsolete unmarshaler interface, which
// keeps this package free of a yaml import.
func (s *ModifierSet) UnmarshalYAML(unmarshal func(any) error) error {
	var names []string
	if err := unmarshal(&names); err != nil {
		return err
	}
	parsed, err := ParseModifierSet(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
