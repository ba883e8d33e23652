package chaos

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/udisondev/elemental/internal/element"
	"github.com/udisondev/elemental/internal/event"
)

// ErrUnknownModifier is returned by Parse for unrecognised modifier names.
var ErrUnknownModifier = errors.New("unknown chaos modifier")

// Kind is the run-wide chaos modifier.
// Unrelated to combo kinds even where names overlap (ToxicCloud).
type Kind uint8

const (
	None Kind = iota
	VolatileAtmosphere
	ZeroKelvin
	ShortCircuit
	ToxicCloud
)

const kindCount = 5

type kindInfo struct {
	key   string
	name  string
	blurb string
	color element.Color
}

var kinds = [kindCount]kindInfo{
	None:               {key: "none", name: "None", color: element.None.Info().Color},
	VolatileAtmosphere: {key: "volatile_atmosphere", name: "Volatile Atmosphere", blurb: "Fire damage doubled", color: element.Fire.Info().Color},
	ZeroKelvin:         {key: "zero_kelvin", name: "Zero Kelvin", blurb: "Ice slows 50% harder", color: element.Ice.Info().Color},
	ShortCircuit:       {key: "short_circuit", name: "Short Circuit", blurb: "Lightning chains 2 extra targets", color: element.Lightning.Info().Color},
	ToxicCloud:         {key: "toxic_cloud", name: "Toxic Cloud", blurb: "Poison lasts twice as long", color: element.Poison.Info().Color},
}

func (k Kind) String() string {
	if k >= kindCount {
		return kinds[None].name
	}
	return kinds[k].name
}

// Key returns the config identifier, e.g. "zero_kelvin".
func (k Kind) Key() string {
	if k >= kindCount {
		return kinds[None].key
	}
	return kinds[k].key
}

// Parse resolves a config identifier. Matching ignores case and treats
// spaces and dashes as underscores.
func Parse(s string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	for i, info := range kinds {
		if info.key == key {
			return Kind(i), nil
		}
	}
	return None, fmt.Errorf("parsing %q: %w", s, ErrUnknownModifier)
}

// TopicModifierChanged is the topic of Changed.
const TopicModifierChanged event.Topic = "chaos.modifier_changed"

// Changed is published whenever the active modifier is set or reset.
type Changed struct {
	Kind Kind
}

func (Changed) Topic() event.Topic { return TopicModifierChanged }

// Source is the read side consumed by the status engine at apply time.
type Source interface {
	FireDamageMultiplier() float64
	IceSlowMultiplier() float64
	LightningChainBonus() int
	PoisonDurationMultiplier() float64
}

// Modifier holds the single active chaos modifier for a run.
// Owned by the run lifecycle; the status engine only reads it.
type Modifier struct {
	kind Kind
	bus  *event.Bus
}

var _ Source = (*Modifier)(nil)

// NewModifier creates a modifier set to None that publishes changes on bus.
func NewModifier(bus *event.Bus) *Modifier {
	return &Modifier{bus: bus}
}

// Kind returns the active modifier.
func (m *Modifier) Kind() Kind {
	return m.kind
}

// Set activates k, publishing Changed and a Notification banner.
func (m *Modifier) Set(k Kind) {
	if k >= kindCount {
		k = None
	}
	m.kind = k

	slog.Info("chaos modifier set", "modifier", k.String())

	m.bus.Publish(Changed{Kind: k})
	m.bus.Publish(event.Notification{Text: NotificationText(k), Color: kinds[k].color})
}

// Randomize picks one of the four real modifiers uniformly and activates it.
func (m *Modifier) Randomize(rng *rand.Rand) Kind {
	k := Kind(1 + rng.IntN(kindCount-1))
	m.Set(k)
	return k
}

// Reset returns the run to no modifier.
func (m *Modifier) Reset() {
	m.Set(None)
}

// NotificationText is the banner shown when k becomes active.
func NotificationText(k Kind) string {
	if k == None || k >= kindCount {
		return "Chaos Modifier: None"
	}
	return fmt.Sprintf("Chaos Modifier: %s! %s", kinds[k].name, kinds[k].blurb)
}

func (m *Modifier) FireDamageMultiplier() float64 {
	if m.kind == VolatileAtmosphere {
		return 2.0
	}
	return 1.0
}

func (m *Modifier) IceSlowMultiplier() float64 {
	if m.kind == ZeroKelvin {
		return 1.5
	}
	return 1.0
}

func (m *Modifier) LightningChainBonus() int {
	if m.kind == ShortCircuit {
		return 2
	}
	return 0
}

func (m *Modifier) PoisonDurationMultiplier() float64 {
	if m.kind == ToxicCloud {
		return 2.0
	}
	return 1.0
}
