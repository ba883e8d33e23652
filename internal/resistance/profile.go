package resistance

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/elemental/internal/element"
	"github.com/udisondev/elemental/internal/event"
	"github.com/udisondev/elemental/internal/geom"
)

// ErrUnknownClass is returned when a config names an unknown resistance class.
var ErrUnknownClass = errors.New("unknown resistance class")

// Class is a per-element incoming damage category.
type Class uint8

const (
	Normal Class = iota
	Weak
	Resistant
	Immune
)

var classNames = [...]string{
	Normal:    "normal",
	Weak:      "weak",
	Resistant: "resistant",
	Immune:    "immune",
}

func (c Class) String() string {
	if int(c) >= len(classNames) {
		return classNames[Normal]
	}
	return classNames[c]
}

// Multiplier returns the damage factor for the class.
func (c Class) Multiplier() float64 {
	switch c {
	case Weak:
		return 1.5
	case Resistant:
		return 0.5
	case Immune:
		return 0
	default:
		return 1.0
	}
}

// UnmarshalText parses "weak", "Resistant", ... from config.
func (c *Class) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range classNames {
		if name == s {
			*c = Class(i)
			return nil
		}
	}
	return fmt.Errorf("parsing %q: %w", string(text), ErrUnknownClass)
}

// Entry assigns a class to one element.
type Entry struct {
	Element element.Kind `yaml:"element"`
	Class   Class        `yaml:"class"`
}

// Text values carried by TextSpawned.
const (
	TextResist = "Resist"
	TextImmune = "Immune"
)

// TopicTextSpawned is the topic of TextSpawned.
const TopicTextSpawned event.Topic = "resistance.text_spawned"

// TextSpawned asks the floating-text UI to show "Resist" or "Immune".
type TextSpawned struct {
	Position geom.Vec2
	Text     string
}

func (TextSpawned) Topic() event.Topic { return TopicTextSpawned }

// Positioner reports where floating text should appear.
type Positioner interface {
	Position() geom.Vec2
}

// Profile is a target's static resistance table, compiled once at creation.
type Profile struct {
	classes [element.Count]Class
	owner   Positioner
	bus     *event.Bus
}

// NewProfile compiles entries into a lookup. A later entry for an element
// that already has one is discarded. Entries for None or unknown elements
// are ignored since resistance never applies to non-elemental damage.
func NewProfile(owner Positioner, bus *event.Bus, entries ...Entry) *Profile {
	p := &Profile{owner: owner, bus: bus}
	var seen [element.Count]bool
	for _, e := range entries {
		if e.Element == element.None || !e.Element.Valid() {
			continue
		}
		if seen[e.Element] {
			slog.Debug("duplicate resistance entry ignored",
				"element", e.Element.String(),
				"class", e.Class.String())
			continue
		}
		seen[e.Element] = true
		p.classes[e.Element] = e.Class
	}
	return p
}

// Class returns the compiled class for el, Normal when absent.
func (p *Profile) Class(el element.Kind) Class {
	if p == nil || !el.Valid() {
		return Normal
	}
	return p.classes[el]
}

// ModifyDamage returns the post-resistance damage for a raw amount.
// Resistant and Immune hits publish a TextSpawned event.
// A zero result must stop the caller before any status application.
func (p *Profile) ModifyDamage(amount float64, el element.Kind) float64 {
	if el == element.None {
		return amount
	}

	switch p.Class(el) {
	case Weak:
		return amount * Weak.Multiplier()
	case Resistant:
		p.spawnText(TextResist)
		return amount * Resistant.Multiplier()
	case Immune:
		p.spawnText(TextImmune)
		return 0
	default:
		return amount
	}
}

func (p *Profile) spawnText(text string) {
	var pos geom.Vec2
	if p.owner != nil {
		pos = p.owner.Position()
	}
	p.bus.Publish(TextSpawned{Position: pos, Text: text})
}
