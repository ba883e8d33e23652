package element

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownElement is returned by Parse for names outside the catalog.
var ErrUnknownElement = errors.New("unknown element")

// Kind identifies an elemental damage type.
// The numeric value is used only as an array index; ordering carries no meaning.
type Kind uint8

const (
	None Kind = iota
	Fire
	Ice
	Lightning
	Poison
)

// Count is the number of element kinds, including None.
const Count = 5

// Color is an RGB display hint for tints, particles and floating text.
type Color struct {
	R, G, B uint8
}

// Info is pure display metadata for an element.
type Info struct {
	Name  string
	Color Color
}

var catalog = [Count]Info{
	None:      {Name: "None", Color: Color{R: 255, G: 255, B: 255}},
	Fire:      {Name: "Fire", Color: Color{R: 255, G: 102, B: 0}},
	Ice:       {Name: "Ice", Color: Color{R: 102, G: 204, B: 255}},
	Lightning: {Name: "Lightning", Color: Color{R: 255, G: 255, B: 51}},
	Poison:    {Name: "Poison", Color: Color{R: 102, G: 255, B: 102}},
}

// All lists every real element, None excluded.
var All = [...]Kind{Fire, Ice, Lightning, Poison}

// Valid reports whether k is inside the catalog.
func (k Kind) Valid() bool {
	return k < Count
}

// Info returns display metadata. Unknown kinds fall back to None.
func (k Kind) Info() Info {
	if !k.Valid() {
		return catalog[None]
	}
	return catalog[k]
}

func (k Kind) String() string {
	return k.Info().Name
}

// Parse resolves a case-insensitive element name ("fire", "Ice", ...).
func Parse(name string) (Kind, error) {
	n := strings.TrimSpace(name)
	for i, info := range catalog {
		if strings.EqualFold(info.Name, n) {
			return Kind(i), nil
		}
	}
	return None, fmt.Errorf("parsing %q: %w", name, ErrUnknownElement)
}

// UnmarshalText lets config files name elements directly.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText writes the lower-case element name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(k.String())), nil
}
