package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/elemental/internal/chaos"
	"github.com/udisondev/elemental/internal/element"
	"github.com/udisondev/elemental/internal/event"
	"github.com/udisondev/elemental/internal/geom"
	"github.com/udisondev/elemental/internal/spatial"
	"github.com/udisondev/elemental/internal/testutil"
)

// unorderedArea returns entities exactly as given, ignoring radius.
type unorderedArea []spatial.Entity

func (a unorderedArea) Query(geom.Vec2, float64) []spatial.Entity { return a }

// shielded resolves hops itself and absorbs a fixed fraction.
type shielded struct {
	*testutil.Dummy
	absorb float64
}

func (s shielded) ReceiveChain(amount, stun float64) float64 {
	dealt := amount * (1 - s.absorb)
	if dealt <= 0 {
		return 0
	}
	s.TakeDamage(dealt)
	s.Stun(stun)
	return dealt
}

type harness struct {
	clock  *testutil.ManualClock
	bus    *event.Bus
	log    *testutil.EventLog
	chaos  *chaos.Modifier
	area   *testutil.StaticArea
	target *testutil.Dummy
	engine *Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		clock:  &testutil.ManualClock{},
		bus:    event.NewBus(),
		area:   &testutil.StaticArea{},
		target: testutil.NewDummy(1, geom.V(0, 0), 100),
	}
	h.log = testutil.Record(h.bus)
	h.chaos = chaos.NewModifier(nil)
	h.area.Add(h.target)
	h.engine = NewEngine(h.target, Options{
		Chaos: h.chaos,
		Clock: h.clock,
		Area:  h.area,
		Bus:   h.bus,
	})
	return h
}

func (h *harness) state(t *testing.T, el element.Kind) State {
	t.Helper()
	st, ok := h.engine.State(el)
	require.True(t, ok, "expected %s state", el)
	return st
}

func TestApply_FireFirstApplication(t *testing.T) {
	h := newHarness(t)
	h.clock.T = 10

	h.engine.Apply(NewDescriptor(element.Fire, 20))

	st := h.state(t, element.Fire)
	assert.InDelta(t, 3.0, st.TickDamage, 1e-9) // dps 6, half per 0.5s tick
	assert.Equal(t, FireTickInterval, st.TickInterval)
	assert.InDelta(t, 13.0, st.EndTime, 1e-9)
	assert.InDelta(t, 10.5, st.NextTickTime, 1e-9)

	applied := testutil.Of[EffectApplied](h.log)
	require.Len(t, applied, 1)
	assert.Equal(t, element.Fire, applied[0].Element)
	assert.Equal(t, uint32(1), applied[0].TargetID)
}

func TestApply_FireReapplyStrongestWins(t *testing.T) {
	h := newHarness(t)

	h.engine.Apply(NewDescriptor(element.Fire, 20))
	h.clock.T = 1
	h.engine.Apply(NewDescriptor(element.Fire, 10))

	st := h.state(t, element.Fire)
	assert.InDelta(t, 3.0, st.TickDamage, 1e-9, "max(3, 1.5)")
	assert.InDelta(t, 4.0, st.EndTime, 1e-9, "max(3, 1+3)")

	// a weaker, shorter reapplication never shortens
	h.engine.Apply(NewDescriptor(element.Fire, 50).WithDuration(0.5))
	st = h.state(t, element.Fire)
	assert.InDelta(t, 7.5, st.TickDamage, 1e-9)
	assert.InDelta(t, 4.0, st.EndTime, 1e-9)
	assert.Equal(t, 1, h.engine.ActiveCount())
}

func TestApply_FireVolatileAtmosphere(t *testing.T) {
	h := newHarness(t)
	h.chaos.Set(chaos.VolatileAtmosphere)

	h.engine.Apply(NewDescriptor(element.Fire, 20))

	// dps = 20*0.3*2 = 12
	assert.InDelta(t, 6.0, h.state(t, element.Fire).TickDamage, 1e-9)
}

func TestApply_MultiplierReadAtApplyTime(t *testing.T) {
	h := newHarness(t)
	h.chaos.Set(chaos.VolatileAtmosphere)
	h.engine.Apply(NewDescriptor(element.Fire, 20))
	h.chaos.Reset()

	h.engine.Advance(0.5)

	assert.Equal(t, []float64{6.0}, h.target.Damage)
}

func TestApply_Ice(t *testing.T) {
	tests := []struct {
		name     string
		modifier chaos.Kind
		strength float64
		want     float64
	}{
		{name: "baseline", strength: 1, want: 0.3},
		{name: "zero kelvin", modifier: chaos.ZeroKelvin, strength: 1, want: 0.45},
		{name: "clamped high", strength: 10, want: MaxSlow},
		{name: "clamped low", strength: 0.1, want: MinSlow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.chaos.Set(tt.modifier)

			h.engine.Apply(NewDescriptor(element.Ice, 10).WithStrength(tt.strength))

			assert.InDelta(t, tt.want, h.engine.SlowFraction(), 1e-9)
			assert.Zero(t, h.state(t, element.Ice).TickDamage)
		})
	}
}

func TestApply_IceReapplyMax(t *testing.T) {
	h := newHarness(t)

	h.engine.Apply(NewDescriptor(element.Ice, 10).WithStrength(2).WithDuration(5))
	h.clock.T = 1
	h.engine.Apply(NewDescriptor(element.Ice, 10).WithStrength(1).WithDuration(1))

	st := h.state(t, element.Ice)
	assert.InDelta(t, 0.6, st.SlowFraction, 1e-9)
	assert.InDelta(t, 5.0, st.EndTime, 1e-9)
}

func TestApply_PoisonStacking(t *testing.T) {
	h := newHarness(t)

	for range 5 {
		h.engine.Apply(NewDescriptor(element.Poison, 10).WithDuration(5))
	}
	st := h.state(t, element.Poison)
	assert.Equal(t, 5, st.StackCount)
	assert.InDelta(t, 10.0, st.TickDamage, 1e-9)

	h.engine.Apply(NewDescriptor(element.Poison, 10).WithDuration(5))
	st = h.state(t, element.Poison)
	assert.Equal(t, MaxPoisonStacks, st.StackCount)
	assert.InDelta(t, 10.0, st.TickDamage, 1e-9)
}

func TestApply_PoisonDurationResets(t *testing.T) {
	h := newHarness(t)

	h.engine.Apply(NewDescriptor(element.Poison, 10).WithDuration(5))
	h.clock.T = 4
	h.engine.Apply(NewDescriptor(element.Poison, 10).WithDuration(2))

	st := h.state(t, element.Poison)
	assert.InDelta(t, 6.0, st.EndTime, 1e-9, "full reset to now+duration, not max")
	assert.Equal(t, 2, st.StackCount)
	assert.InDelta(t, 4.0, st.TickDamage, 1e-9)
}

func TestApply_PoisonToxicCloudDuration(t *testing.T) {
	h := newHarness(t)
	h.chaos.Set(chaos.ToxicCloud)

	h.engine.Apply(NewDescriptor(element.Poison, 10).WithDuration(5))

	assert.InDelta(t, 10.0, h.state(t, element.Poison).EndTime, 1e-9)
}

func TestApply_LightningChains(t *testing.T) {
	h := newHarness(t)
	near := testutil.NewDummy(2, geom.V(1, 0), 100)
	mid := testutil.NewDummy(3, geom.V(0, 2), 100)
	far := testutil.NewDummy(4, geom.V(3, 0), 100)
	farthest := testutil.NewDummy(5, geom.V(4, 0), 100)
	outOfRange := testutil.NewDummy(6, geom.V(20, 0), 100)
	h.area.Add(farthest, far, mid, near, outOfRange)

	h.engine.Apply(NewDescriptor(element.Lightning, 10))

	assert.True(t, h.engine.IsStunned())
	assert.Empty(t, h.target.Damage, "owner is excluded from its own chain")

	assert.InDeltaSlice(t, []float64{7}, near.Damage, 1e-9)
	assert.InDeltaSlice(t, []float64{4.9}, mid.Damage, 1e-9)
	assert.InDeltaSlice(t, []float64{3.43}, far.Damage, 1e-9)
	assert.Empty(t, farthest.Damage)
	assert.Empty(t, outOfRange.Damage)

	assert.Equal(t, []float64{StunDuration}, near.Stuns)
	hits := testutil.Of[ChainHit](h.log)
	require.Len(t, hits, 3)
	assert.Equal(t, []uint32{2, 3, 4}, []uint32{hits[0].TargetID, hits[1].TargetID, hits[2].TargetID})
}

func TestApply_LightningShortCircuitAndDeadSkipped(t *testing.T) {
	h := newHarness(t)
	h.chaos.Set(chaos.ShortCircuit)
	for i := range 6 {
		h.area.Add(testutil.NewDummy(uint32(10+i), geom.V(float64(i+1)*0.5, 0), 100))
	}
	corpse := testutil.NewDummy(99, geom.V(0.1, 0), 0)
	corpse.Dead = true
	h.area.Add(corpse)

	h.engine.Apply(NewDescriptor(element.Lightning, 10))

	assert.Len(t, testutil.Of[ChainHit](h.log), 5)
	assert.Empty(t, corpse.Damage)
}

func TestApply_LightningTiesBrokenByID(t *testing.T) {
	h := newHarness(t)
	east := testutil.NewDummy(7, geom.V(1, 0), 100)
	north := testutil.NewDummy(3, geom.V(0, 1), 100)
	west := testutil.NewDummy(5, geom.V(-1, 0), 100)
	south := testutil.NewDummy(9, geom.V(0, -1), 100)
	h.engine = NewEngine(h.target, Options{
		Chaos: h.chaos,
		Clock: h.clock,
		Area:  unorderedArea{east, h.target, south, north, west},
		Bus:   h.bus,
	})

	h.engine.Apply(NewDescriptor(element.Lightning, 10))

	hits := testutil.Of[ChainHit](h.log)
	require.Len(t, hits, 3)
	assert.Equal(t, []uint32{3, 5, 7}, []uint32{hits[0].TargetID, hits[1].TargetID, hits[2].TargetID})
	assert.Empty(t, south.Damage)
}

func TestApply_LightningChainReceiver(t *testing.T) {
	tests := []struct {
		name      string
		absorb    float64
		wantDealt float64
		wantStun  bool
	}{
		{name: "partial", absorb: 0.5, wantDealt: 3.5, wantStun: true},
		{name: "full", absorb: 1, wantDealt: 0, wantStun: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			d := testutil.NewDummy(2, geom.V(1, 0), 100)
			h.area.Add(shielded{Dummy: d, absorb: tt.absorb})

			h.engine.Apply(NewDescriptor(element.Lightning, 10))

			assert.InDelta(t, tt.wantDealt, d.TotalDamage(), 1e-9)
			assert.Equal(t, tt.wantStun, len(d.Stuns) > 0)
			hits := testutil.Of[ChainHit](h.log)
			if tt.wantDealt == 0 {
				assert.Empty(t, hits)
				return
			}
			require.Len(t, hits, 1)
			assert.InDelta(t, tt.wantDealt, hits[0].Amount, 1e-9)
		})
	}
}

func TestApply_LightningOverwrites(t *testing.T) {
	h := newHarness(t)

	h.engine.Stun(2.0)
	h.clock.T = 0.1
	h.engine.Apply(NewDescriptor(element.Lightning, 10).WithDuration(10))

	st := h.state(t, element.Lightning)
	assert.InDelta(t, 0.4, st.EndTime, 1e-9, "overwrite to now+0.3, never max")
	assert.True(t, st.Stunned)
}

func TestApply_GuardNoOp(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
	}{
		{name: "none element", d: NewDescriptor(element.None, 10)},
		{name: "zero amount", d: NewDescriptor(element.Fire, 0)},
		{name: "negative amount", d: NewDescriptor(element.Poison, -5)},
		{name: "out of catalog", d: NewDescriptor(element.Kind(9), 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.engine.Apply(tt.d)

			assert.Zero(t, h.engine.ActiveCount())
			assert.Empty(t, testutil.Of[EffectApplied](h.log))
		})
	}
}

func TestApply_ZeroDescriptorFieldsUseDefaults(t *testing.T) {
	h := newHarness(t)

	h.engine.Apply(Descriptor{Element: element.Ice, Amount: 5})

	st := h.state(t, element.Ice)
	assert.InDelta(t, DefaultDuration, st.EndTime, 1e-9)
	assert.InDelta(t, 0.3, st.SlowFraction, 1e-9)
}

func TestAdvance_TicksAndExpires(t *testing.T) {
	h := newHarness(t)
	h.engine.Apply(NewDescriptor(element.Fire, 20)) // tick 3 every 0.5s, ends at 3

	h.engine.Advance(0.4)
	assert.Empty(t, h.target.Damage)

	h.engine.Advance(0.5)
	h.engine.Advance(0.6)
	h.engine.Advance(1.0)
	assert.Equal(t, []float64{3, 3}, h.target.Damage)

	h.engine.Advance(3.0)
	assert.False(t, h.engine.HasEffect(element.Fire))

	removed := testutil.Of[EffectRemoved](h.log)
	require.Len(t, removed, 1)
	assert.Equal(t, element.Fire, removed[0].Element)
	assert.Len(t, testutil.Of[DamageOverTime](h.log), 2)
}

func TestAdvance_NoCatchUp(t *testing.T) {
	h := newHarness(t)
	h.engine.Apply(NewDescriptor(element.Poison, 10).WithDuration(10)) // tick 2 every 1s

	// one long frame covering four intervals
	h.engine.Advance(4.5)
	assert.Equal(t, []float64{2}, h.target.Damage)

	st := h.state(t, element.Poison)
	assert.InDelta(t, 5.5, st.NextTickTime, 1e-9)

	h.engine.Advance(5.0)
	assert.Len(t, h.target.Damage, 1)
	h.engine.Advance(5.5)
	assert.Len(t, h.target.Damage, 2)
}

func TestAdvance_ExpiryBeforeTick(t *testing.T) {
	h := newHarness(t)
	h.engine.Apply(NewDescriptor(element.Fire, 20))

	h.engine.Advance(100)

	assert.Empty(t, h.target.Damage)
	assert.Zero(t, h.engine.ActiveCount())
}

func TestAdvance_DeadTargetStillExpires(t *testing.T) {
	h := newHarness(t)
	h.engine.Apply(NewDescriptor(element.Fire, 20))
	h.target.Dead = true

	h.engine.Advance(0.5)
	assert.Empty(t, h.target.Damage)
	assert.Empty(t, testutil.Of[DamageOverTime](h.log))

	h.engine.Advance(3)
	assert.Zero(t, h.engine.ActiveCount())
	assert.Len(t, testutil.Of[EffectRemoved](h.log), 1)
}

type bareOwner struct{}

func (bareOwner) ID() uint32          { return 7 }
func (bareOwner) Position() geom.Vec2 { return geom.Vec2{} }

func TestAdvance_MissingHealthSink(t *testing.T) {
	bus := event.NewBus()
	log := testutil.Record(bus)
	clock := &testutil.ManualClock{}
	e := NewEngine(bareOwner{}, Options{Clock: clock, Bus: bus})

	e.Apply(NewDescriptor(element.Poison, 10))
	e.Advance(1)
	e.Advance(10)

	assert.Empty(t, testutil.Of[DamageOverTime](log))
	assert.Len(t, testutil.Of[EffectRemoved](log), 1)
	assert.Zero(t, e.ActiveCount())
}

func TestClearAll(t *testing.T) {
	h := newHarness(t)
	h.engine.Apply(NewDescriptor(element.Fire, 20))
	h.engine.Apply(NewDescriptor(element.Ice, 20))
	h.engine.Apply(NewDescriptor(element.Poison, 20))
	h.log.Reset()

	h.engine.ClearAll()

	assert.Zero(t, h.engine.ActiveCount())
	assert.Zero(t, h.engine.SlowFraction())
	assert.False(t, h.engine.IsStunned())
	assert.Empty(t, h.log.Events)
}

func TestSnapshot_OnePerElement(t *testing.T) {
	h := newHarness(t)
	for range 3 {
		for _, el := range element.All {
			h.engine.Apply(NewDescriptor(el, 10))
		}
	}

	snap := h.engine.Snapshot()
	require.Len(t, snap, len(element.All))
	for i, st := range snap {
		assert.Equal(t, element.All[i], st.Element)
	}
}
