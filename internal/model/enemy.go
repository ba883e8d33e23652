package model

import "github.com/udisondev/elemental/internal/geom"

// Enemy is a wave target: identity, position and health.
// Status and resistance live beside it in the combat layer.
type Enemy struct {
	id        uint32
	name      string
	pos       geom.Vec2
	maxHP     float64
	currentHP float64
	moveSpeed float64
}

// NewEnemy creates an enemy at full health from tmpl.
func NewEnemy(id uint32, tmpl Template, pos geom.Vec2) *Enemy {
	return &Enemy{
		id:        id,
		name:      tmpl.Name,
		pos:       pos,
		maxHP:     tmpl.MaxHP,
		currentHP: tmpl.MaxHP,
		moveSpeed: tmpl.MoveSpeed,
	}
}

// ID returns the unique id (immutable after creation).
func (e *Enemy) ID() uint32 {
	return e.id
}

func (e *Enemy) Name() string {
	return e.name
}

// Position returns a copy of the enemy's position.
func (e *Enemy) Position() geom.Vec2 {
	return e.pos
}

// SetPosition moves the enemy. Callers owning a spatial index must re-bucket.
func (e *Enemy) SetPosition(p geom.Vec2) {
	e.pos = p
}

func (e *Enemy) MaxHP() float64 {
	return e.maxHP
}

func (e *Enemy) CurrentHP() float64 {
	return e.currentHP
}

// MoveSpeed is the unmodified speed in arena units per second.
func (e *Enemy) MoveSpeed() float64 {
	return e.moveSpeed
}

// IsDead reports zero health.
func (e *Enemy) IsDead() bool {
	return e.currentHP <= 0
}

// HPPercentage returns current HP as a fraction of max in [0, 1].
func (e *Enemy) HPPercentage() float64 {
	if e.maxHP <= 0 {
		return 0
	}
	return e.currentHP / e.maxHP
}

// TakeDamage reduces HP by amount (minimum 0). Non-positive amounts are ignored.
func (e *Enemy) TakeDamage(amount float64) {
	if amount <= 0 {
		return
	}
	e.currentHP = max(e.currentHP-amount, 0)
}

// Revive restores full health, for respawn between waves.
func (e *Enemy) Revive() {
	e.currentHP = e.maxHP
}
