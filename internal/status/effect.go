package status

import (
	"github.com/udisondev/elemental/internal/element"
	"github.com/udisondev/elemental/internal/event"
	"github.com/udisondev/elemental/internal/geom"
)

// Descriptor defaults.
const (
	DefaultDuration = 3.0
	DefaultStrength = 1.0
)

// Descriptor is one elemental application, consumed immediately by Apply.
type Descriptor struct {
	Element  element.Kind
	Amount   float64
	Duration float64
	Strength float64
}

// NewDescriptor returns a descriptor with the default duration and strength.
func NewDescriptor(el element.Kind, amount float64) Descriptor {
	return Descriptor{
		Element:  el,
		Amount:   amount,
		Duration: DefaultDuration,
		Strength: DefaultStrength,
	}
}

// WithDuration returns a copy with a different duration.
func (d Descriptor) WithDuration(seconds float64) Descriptor {
	d.Duration = seconds
	return d
}

// WithStrength returns a copy with a different strength.
func (d Descriptor) WithStrength(strength float64) Descriptor {
	d.Strength = strength
	return d
}

// normalized fills zero duration/strength with defaults so a bare
// Descriptor{Element, Amount} literal behaves like NewDescriptor.
func (d Descriptor) normalized() Descriptor {
	if d.Duration <= 0 {
		d.Duration = DefaultDuration
	}
	if d.Strength <= 0 {
		d.Strength = DefaultStrength
	}
	return d
}

// State is the mutable record of one active element on one target.
type State struct {
	Element      element.Kind
	StartTime    float64
	EndTime      float64
	TickDamage   float64
	TickInterval float64
	NextTickTime float64
	SlowFraction float64
	Stunned      bool
	StackCount   int
}

// Clock is the paused-aware simulation time source, in seconds.
type Clock interface {
	Now() float64
}

// Owner is the target an engine belongs to.
type Owner interface {
	ID() uint32
	Position() geom.Vec2
}

// Damageable takes direct damage from chains and area reactions.
type Damageable interface {
	TakeDamage(amount float64)
}

// HealthSink is optionally implemented by an Owner; without it ticks
// still expire but deal no damage.
type HealthSink interface {
	Damageable
	IsDead() bool
}

// Stunnable is implemented by targets a lightning chain can stun.
type Stunnable interface {
	Stun(duration float64)
}

// ChainReceiver resolves a lightning hop on its own terms (resistance,
// death) and returns the damage actually dealt. Zero means the hop did not
// land and no stun was applied.
type ChainReceiver interface {
	ReceiveChain(amount, stun float64) float64
}

// Event topics.
const (
	TopicEffectApplied  event.Topic = "status.effect_applied"
	TopicEffectRemoved  event.Topic = "status.effect_removed"
	TopicDamageOverTime event.Topic = "status.damage_over_time"
	TopicChainHit       event.Topic = "status.chain_hit"
)

// EffectApplied is published on every accepted application, first or repeated.
type EffectApplied struct {
	TargetID uint32
	Element  element.Kind
	Stacks   int
}

func (EffectApplied) Topic() event.Topic { return TopicEffectApplied }

// EffectRemoved is published when a state expires during Advance.
type EffectRemoved struct {
	TargetID uint32
	Element  element.Kind
}

func (EffectRemoved) Topic() event.Topic { return TopicEffectRemoved }

// DamageOverTime is published for every scheduled tick that dealt damage.
type DamageOverTime struct {
	TargetID uint32
	Element  element.Kind
	Amount   float64
	Position geom.Vec2
}

func (DamageOverTime) Topic() event.Topic { return TopicDamageOverTime }

// ChainHit is published for each lightning hop.
type ChainHit struct {
	SourceID uint32
	TargetID uint32
	Hop      int
	Amount   float64
	Position geom.Vec2
}

func (ChainHit) Topic() event.Topic { return TopicChainHit }
