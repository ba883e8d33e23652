package combat

import (
	"github.com/udisondev/elemental/internal/element"
	"github.com/udisondev/elemental/internal/geom"
	"github.com/udisondev/elemental/internal/model"
	"github.com/udisondev/elemental/internal/resistance"
	"github.com/udisondev/elemental/internal/status"
)

// Unit binds an enemy to its resistance profile and status engine.
// It is what the spatial index stores, so chain and area reactions reach
// the same object the weapons hit.
type Unit struct {
	enemy      *model.Enemy
	template   string
	resistance *resistance.Profile
	effects    *status.Engine
	ctx        *Context
}

func (u *Unit) ID() uint32          { return u.enemy.ID() }
func (u *Unit) Position() geom.Vec2 { return u.enemy.Position() }
func (u *Unit) IsDead() bool        { return u.enemy.IsDead() }

// TakeDamage deducts already-resolved damage.
func (u *Unit) TakeDamage(amount float64) {
	u.enemy.TakeDamage(amount)
}

func (u *Unit) Enemy() *model.Enemy             { return u.enemy }
func (u *Unit) Template() string                { return u.template }
func (u *Unit) Resistance() *resistance.Profile { return u.resistance }
func (u *Unit) Effects() *status.Engine         { return u.effects }
func (u *Unit) HasEffect(el element.Kind) bool  { return u.effects.HasEffect(el) }
func (u *Unit) SlowFraction() float64           { return u.effects.SlowFraction() }
func (u *Unit) IsStunned() bool                 { return u.effects.IsStunned() }

// Stun is the lightning chain-hit entry point.
func (u *Unit) Stun(duration float64) {
	if u.IsDead() {
		return
	}
	u.effects.Stun(duration)
}

// ReceiveElemental takes a secondary application from a combo cloud:
// resistance first, then the status engine. No direct damage, no combo check.
func (u *Unit) ReceiveElemental(d status.Descriptor) {
	if u.IsDead() {
		return
	}
	d.Amount = u.resistance.ModifyDamage(d.Amount, d.Element)
	if d.Amount <= 0 {
		return
	}
	u.effects.Apply(d)
}

// ReceiveChain lands a lightning hop through the unit's resistance. An
// immune unit takes nothing and is not stunned.
func (u *Unit) ReceiveChain(amount, stun float64) float64 {
	if u.IsDead() {
		return 0
	}
	dealt := u.resistance.ModifyDamage(amount, element.Lightning)
	if dealt <= 0 {
		return 0
	}
	u.TakeDamage(dealt)
	u.Stun(stun)
	return dealt
}

// MoveTo repositions the unit and re-buckets it in the spatial index.
func (u *Unit) MoveTo(p geom.Vec2) {
	u.enemy.SetPosition(p)
	if u.ctx != nil {
		u.ctx.grid.Update(u)
	}
}

// EffectiveSpeed is the move speed after stun and slow.
func (u *Unit) EffectiveSpeed() float64 {
	if u.IsDead() || u.IsStunned() {
		return 0
	}
	return u.enemy.MoveSpeed() * (1 - u.SlowFraction())
}
