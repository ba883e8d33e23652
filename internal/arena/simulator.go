package arena

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/udisondev/elemental/internal/combat"
	"github.com/udisondev/elemental/internal/config"
	"github.com/udisondev/elemental/internal/element"
	"github.com/udisondev/elemental/internal/geom"
	"github.com/udisondev/elemental/internal/model"
	"github.com/udisondev/elemental/internal/runstats"
)

// hitElements is the weapon pool; None stands for a plain bullet.
var hitElements = [...]element.Kind{element.None, element.Fire, element.Ice, element.Lightning, element.Poison}

// Simulator drives waves against a combat context the way the game loop
// would: move, fire, step. It owns the context for the whole run.
type Simulator struct {
	cfg      config.Simulation
	combat   *combat.Context
	recorder *runstats.Recorder
	rng      *rand.Rand
	waves    []model.Template

	hitBudget float64
	steps     int
}

// New prepares a simulator. Wave templates are resolved up front.
func New(cfg config.Arena, c *combat.Context, rec *runstats.Recorder, rng *rand.Rand) (*Simulator, error) {
	s := &Simulator{cfg: cfg.Simulation, combat: c, recorder: rec, rng: rng}
	for _, name := range cfg.Simulation.WaveTemplates {
		t, err := cfg.Template(name)
		if err != nil {
			return nil, fmt.Errorf("preparing simulator: %w", err)
		}
		s.waves = append(s.waves, t)
	}
	if len(s.waves) == 0 {
		s.waves = cfg.Templates
	}
	if len(s.waves) == 0 {
		return nil, fmt.Errorf("preparing simulator: %w", config.ErrUnknownTemplate)
	}
	return s, nil
}

// Steps returns the number of simulation steps run so far.
func (s *Simulator) Steps() int {
	return s.steps
}

// Run plays every configured wave and sends each wave's summary to out.
// It stops early when ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, out chan<- runstats.Summary) error {
	for wave := 1; wave <= s.cfg.Waves; wave++ {
		summary, err := s.RunWave(ctx, wave)
		if err != nil {
			return err
		}
		select {
		case out <- summary:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// RunWave spawns wave n, plays it until everything is dead or the wave
// timer runs out, then clears the arena.
func (s *Simulator) RunWave(ctx context.Context, n int) (runstats.Summary, error) {
	s.recorder.StartWave(n)
	if err := s.spawnWave(n); err != nil {
		return runstats.Summary{}, err
	}

	start := s.combat.Now()
	for s.combat.Now()-start < s.cfg.WaveSeconds && s.combat.Alive() > 0 {
		if err := ctx.Err(); err != nil {
			return runstats.Summary{}, err
		}
		s.step()
	}

	summary := s.recorder.Current()
	slog.Info("wave finished",
		"wave", n,
		"survivors", s.combat.Alive(),
		"combos", summary.TotalCombos(),
		"dot_damage", math.Round(summary.DotDamage),
		"modifier", summary.Modifier.String())

	s.combat.Clear()
	return summary, nil
}

func (s *Simulator) spawnWave(n int) error {
	half := s.cfg.ArenaSize / 2
	for i := range s.cfg.EnemiesPerWave {
		tmpl := s.waves[(i+n-1)%len(s.waves)]
		pos := geom.V(s.rng.Float64()*s.cfg.ArenaSize-half, s.rng.Float64()*s.cfg.ArenaSize-half)
		if _, err := s.combat.Spawn(tmpl, pos); err != nil {
			return fmt.Errorf("spawning wave %d: %w", n, err)
		}
	}
	return nil
}

// step is one frame: variable delta, enemy movement, weapon fire, then
// the combat step that advances every status engine once.
func (s *Simulator) step() {
	dt := s.cfg.TickDelta
	if s.cfg.FrameJitter > 0 {
		dt += s.rng.Float64() * s.cfg.FrameJitter
	}

	for _, u := range s.combat.Units() {
		if u.IsDead() {
			continue
		}
		s.moveTowardCenter(u, dt)
	}

	s.hitBudget += s.cfg.HitsPerSecond * dt
	for s.hitBudget >= 1 {
		s.hitBudget--
		s.fire()
	}

	s.combat.Step(dt)
	s.steps++
}

func (s *Simulator) moveTowardCenter(u *combat.Unit, dt float64) {
	speed := u.EffectiveSpeed()
	if speed <= 0 {
		return
	}
	pos := u.Position()
	dist := pos.Distance(geom.Vec2{})
	if dist < 0.5 {
		return
	}
	step := math.Min(speed*dt, dist)
	u.MoveTo(geom.V(pos.X-pos.X/dist*step, pos.Y-pos.Y/dist*step))
}

func (s *Simulator) fire() {
	var alive []*combat.Unit
	for _, u := range s.combat.Units() {
		if !u.IsDead() {
			alive = append(alive, u)
		}
	}
	if len(alive) == 0 {
		return
	}
	target := alive[s.rng.IntN(len(alive))]
	el := hitElements[s.rng.IntN(len(hitElements))]

	res, err := s.combat.Hit(target.ID(), el, s.cfg.HitDamage)
	if err != nil {
		slog.Warn("hit dropped", "target", target.ID(), "err", err)
		return
	}
	if len(res.Combos) > 0 {
		slog.Debug("hit triggered combos", "target", target.ID(), "element", el.String(), "combos", len(res.Combos))
	}
}
