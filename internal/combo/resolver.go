package combo

import (
	"log/slog"
	"math"

	"github.com/udisondev/elemental/internal/element"
	"github.com/udisondev/elemental/internal/event"
	"github.com/udisondev/elemental/internal/geom"
	"github.com/udisondev/elemental/internal/spatial"
	"github.com/udisondev/elemental/internal/status"
)

// Kind identifies a combo reaction.
type Kind uint8

const (
	SteamExplosion Kind = iota
	ToxicCloud
	Shatter
	ElectroPoison
)

var kindNames = [...]string{
	SteamExplosion: "Steam Explosion",
	ToxicCloud:     "Toxic Cloud",
	Shatter:        "Shatter",
	ElectroPoison:  "Electro Poison",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Pair is one row of the interaction table.
type Pair struct {
	Kind Kind
	A, B element.Kind
}

// Table is the fixed interaction matrix, checked in this order.
var Table = [...]Pair{
	{Kind: SteamExplosion, A: element.Fire, B: element.Ice},
	{Kind: ToxicCloud, A: element.Fire, B: element.Poison},
	{Kind: Shatter, A: element.Ice, B: element.Lightning},
	{Kind: ElectroPoison, A: element.Lightning, B: element.Poison},
}

// partner returns the other element of the pair when el belongs to it.
func (p Pair) partner(el element.Kind) (element.Kind, bool) {
	switch el {
	case p.A:
		return p.B, true
	case p.B:
		return p.A, true
	}
	return element.None, false
}

// Defaults.
const (
	DefaultRadius     = 3.0
	DefaultMultiplier = 2.0

	minFalloff = 0.3

	toxicCloudFactor   = 0.5 * 3
	toxicCloudDuration = 5.0

	shatterFactor      = 1.5
	shatterRadiusScale = 0.5

	electroPoisonFactor      = 0.5
	electroPoisonDuration    = 4.0
	electroPoisonRadiusScale = 1.5
)

// TopicTriggered and TopicAreaHit name combo events.
const (
	TopicTriggered event.Topic = "combo.triggered"
	TopicAreaHit   event.Topic = "combo.area_hit"
)

// Triggered is published before the reaction resolves, for the VFX layer.
type Triggered struct {
	Kind     Kind
	Position geom.Vec2
	TargetID uint32
	Damage   float64
}

func (Triggered) Topic() event.Topic { return TopicTriggered }

// AreaHit is published for each direct area damage hit.
type AreaHit struct {
	Kind     Kind
	TargetID uint32
	Amount   float64
	Position geom.Vec2
}

func (AreaHit) Topic() event.Topic { return TopicAreaHit }

// Target is the combo subject: its active set is read before the new
// element is committed.
type Target interface {
	ID() uint32
	Position() geom.Vec2
	HasEffect(el element.Kind) bool
}

// Receiver takes a secondary elemental application. Implementations run
// their own resistance before handing the descriptor to the status engine.
type Receiver interface {
	ReceiveElemental(d status.Descriptor)
}

// Config holds tuning for area reactions.
type Config struct {
	Radius     float64 `yaml:"radius"`
	Multiplier float64 `yaml:"multiplier"`
}

// DefaultConfig returns radius 3 and a x2 multiplier.
func DefaultConfig() Config {
	return Config{Radius: DefaultRadius, Multiplier: DefaultMultiplier}
}

// Resolver detects and resolves combos. It keeps no per-target state.
type Resolver struct {
	cfg  Config
	area spatial.Query
	bus  *event.Bus
}

// NewResolver creates a resolver. Zero config fields take defaults.
func NewResolver(cfg Config, area spatial.Query, bus *event.Bus) *Resolver {
	if cfg.Radius <= 0 {
		cfg.Radius = DefaultRadius
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = DefaultMultiplier
	}
	return &Resolver{cfg: cfg, area: area, bus: bus}
}

// Config returns the effective configuration.
func (r *Resolver) Config() Config {
	return r.cfg
}

// Check must run before the status engine applies el. Every pair whose
// partner element is active on target fires independently, so one
// application can cascade into several combos. Reapplying an element that
// is already present retriggers its combos as well.
func (r *Resolver) Check(target Target, el element.Kind, baseDamage float64) []Kind {
	if target == nil || el == element.None || baseDamage <= 0 {
		return nil
	}

	var fired []Kind
	for _, p := range Table {
		other, ok := p.partner(el)
		if !ok || !target.HasEffect(other) {
			continue
		}
		r.trigger(p.Kind, target, baseDamage)
		fired = append(fired, p.Kind)
	}
	return fired
}

func (r *Resolver) trigger(k Kind, target Target, baseDamage float64) {
	pos := target.Position()
	dmg := baseDamage * r.cfg.Multiplier

	slog.Debug("combo triggered", "combo", k.String(), "target", target.ID(), "damage", dmg)
	r.bus.Publish(Triggered{Kind: k, Position: pos, TargetID: target.ID(), Damage: dmg})

	switch k {
	case SteamExplosion:
		r.explode(k, pos, r.cfg.Radius, dmg, true)
	case ToxicCloud:
		cloud := status.NewDescriptor(element.Poison, baseDamage*toxicCloudFactor).WithDuration(toxicCloudDuration)
		r.spread(pos, r.cfg.Radius, cloud)
	case Shatter:
		r.explode(k, pos, r.cfg.Radius*shatterRadiusScale, dmg*shatterFactor, false)
	case ElectroPoison:
		venom := status.NewDescriptor(element.Poison, baseDamage*electroPoisonFactor).WithDuration(electroPoisonDuration)
		r.spread(pos, r.cfg.Radius*electroPoisonRadiusScale, venom)
	}
}

// explode deals one-shot area damage, optionally with linear falloff floored at 0.3.
func (r *Resolver) explode(k Kind, center geom.Vec2, radius, amount float64, falloff bool) {
	if r.area == nil || radius <= 0 {
		return
	}
	for _, ent := range r.area.Query(center, radius) {
		d, ok := ent.(status.Damageable)
		if !ok {
			continue
		}
		if sink, ok := ent.(status.HealthSink); ok && sink.IsDead() {
			continue
		}
		hit := amount
		if falloff {
			hit *= math.Max(minFalloff, 1-ent.Position().Distance(center)/radius)
		}
		d.TakeDamage(hit)
		r.bus.Publish(AreaHit{Kind: k, TargetID: ent.ID(), Amount: hit, Position: ent.Position()})
	}
}

// spread hands a fresh Poison descriptor to every receiver in radius.
func (r *Resolver) spread(center geom.Vec2, radius float64, d status.Descriptor) {
	if r.area == nil || radius <= 0 {
		return
	}
	for _, ent := range r.area.Query(center, radius) {
		if rcv, ok := ent.(Receiver); ok {
			rcv.ReceiveElemental(d)
		}
	}
}
