package runstats

import (
	"github.com/udisondev/elemental/internal/chaos"
	"github.com/udisondev/elemental/internal/combo"
	"github.com/udisondev/elemental/internal/element"
	"github.com/udisondev/elemental/internal/event"
	"github.com/udisondev/elemental/internal/resistance"
	"github.com/udisondev/elemental/internal/status"
)

const subscriberName = "runstats"

// ComboKinds is the number of combo kinds tallied per summary.
const ComboKinds = len(combo.Table)

// Summary is the tally of one wave.
type Summary struct {
	Wave           int
	Modifier       chaos.Kind
	EffectsApplied [element.Count]int
	EffectsExpired [element.Count]int
	DotDamage      float64
	DotTicks       int
	ChainHits      int
	ChainDamage    float64
	AreaDamage     float64
	Combos         [ComboKinds]int
	Resisted       int
	Immune         int
}

// TotalCombos sums combos of every kind.
func (s Summary) TotalCombos() int {
	n := 0
	for _, c := range s.Combos {
		n += c
	}
	return n
}

// Recorder tallies bus events into the current wave's Summary.
type Recorder struct {
	bus     *event.Bus
	current Summary
}

// Attach subscribes a new recorder to bus.
func Attach(bus *event.Bus) *Recorder {
	r := &Recorder{bus: bus}
	bus.Subscribe(subscriberName, r.handle)
	return r
}

// Detach stops recording.
func (r *Recorder) Detach() {
	r.bus.Unsubscribe(subscriberName)
}

func (r *Recorder) handle(e event.Event) {
	s := &r.current
	switch ev := e.(type) {
	case status.EffectApplied:
		if ev.Element.Valid() {
			s.EffectsApplied[ev.Element]++
		}
	case status.EffectRemoved:
		if ev.Element.Valid() {
			s.EffectsExpired[ev.Element]++
		}
	case status.DamageOverTime:
		s.DotDamage += ev.Amount
		s.DotTicks++
	case status.ChainHit:
		s.ChainHits++
		s.ChainDamage += ev.Amount
	case combo.Triggered:
		if int(ev.Kind) < ComboKinds {
			s.Combos[ev.Kind]++
		}
	case combo.AreaHit:
		s.AreaDamage += ev.Amount
	case resistance.TextSpawned:
		switch ev.Text {
		case resistance.TextResist:
			s.Resisted++
		case resistance.TextImmune:
			s.Immune++
		}
	case chaos.Changed:
		s.Modifier = ev.Kind
	}
}

// Current returns a copy of the summary being recorded.
func (r *Recorder) Current() Summary {
	return r.current
}

// StartWave closes the current summary and begins wave n, keeping the modifier.
func (r *Recorder) StartWave(n int) Summary {
	done := r.current
	r.current = Summary{Wave: n, Modifier: done.Modifier}
	return done
}
