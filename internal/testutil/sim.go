package testutil

import (
	"cmp"
	"slices"

	"github.com/udisondev/elemental/internal/event"
	"github.com/udisondev/elemental/internal/geom"
	"github.com/udisondev/elemental/internal/spatial"
)

// ManualClock is a simulation clock driven by the test.
type ManualClock struct {
	T float64
}

func (c *ManualClock) Now() float64 { return c.T }

// Advance moves time forward by dt seconds and returns the new time.
func (c *ManualClock) Advance(dt float64) float64 {
	c.T += dt
	return c.T
}

// EventLog records every event published on a bus.
type EventLog struct {
	Events []event.Event
}

// Record subscribes a new EventLog to bus.
func Record(bus *event.Bus) *EventLog {
	l := &EventLog{}
	bus.Subscribe("testutil.log", func(e event.Event) {
		l.Events = append(l.Events, e)
	})
	return l
}

// Reset forgets recorded events.
func (l *EventLog) Reset() {
	l.Events = nil
}

// Topics returns the topic of each recorded event in order.
func (l *EventLog) Topics() []event.Topic {
	out := make([]event.Topic, 0, len(l.Events))
	for _, e := range l.Events {
		out = append(out, e.Topic())
	}
	return out
}

// Of returns the recorded events of type T in order.
func Of[T event.Event](l *EventLog) []T {
	var out []T
	for _, e := range l.Events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Dummy is a minimal damageable, stunnable target.
type Dummy struct {
	IDValue uint32
	Pos     geom.Vec2
	HP      float64
	Dead    bool
	Damage  []float64
	Stuns   []float64
}

func NewDummy(id uint32, pos geom.Vec2, hp float64) *Dummy {
	return &Dummy{IDValue: id, Pos: pos, HP: hp}
}

func (d *Dummy) ID() uint32          { return d.IDValue }
func (d *Dummy) Position() geom.Vec2 { return d.Pos }
func (d *Dummy) IsDead() bool        { return d.Dead }

func (d *Dummy) TakeDamage(amount float64) {
	d.Damage = append(d.Damage, amount)
	d.HP -= amount
	if d.HP <= 0 {
		d.HP = 0
		d.Dead = true
	}
}

func (d *Dummy) Stun(duration float64) {
	d.Stuns = append(d.Stuns, duration)
}

// TotalDamage sums every recorded hit.
func (d *Dummy) TotalDamage() float64 {
	total := 0.0
	for _, v := range d.Damage {
		total += v
	}
	return total
}

// StaticArea answers area queries from a fixed entity list.
type StaticArea struct {
	Entities []spatial.Entity
	Calls    int
}

func (a *StaticArea) Add(es ...spatial.Entity) {
	a.Entities = append(a.Entities, es...)
}

func (a *StaticArea) Query(center geom.Vec2, radius float64) []spatial.Entity {
	a.Calls++
	var out []spatial.Entity
	for _, e := range a.Entities {
		if e.Position().DistanceSquared(center) <= radius*radius {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(x, y spatial.Entity) int { return cmp.Compare(x.ID(), y.ID()) })
	return out
}
