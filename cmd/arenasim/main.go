package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/elemental/internal/arena"
	"github.com/udisondev/elemental/internal/chaos"
	"github.com/udisondev/elemental/internal/combat"
	"github.com/udisondev/elemental/internal/combo"
	"github.com/udisondev/elemental/internal/config"
	"github.com/udisondev/elemental/internal/db"
	"github.com/udisondev/elemental/internal/event"
	"github.com/udisondev/elemental/internal/runstats"
)

const ArenaConfigPath = "config/arena.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ArenaConfigPath
	if p := os.Getenv("ARENA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadArena(cfgPath)
	if err != nil {
		return fmt.Errorf("loading arena config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("arena starting", "seed", cfg.Seed, "waves", cfg.Simulation.Waves, "log_level", cfg.LogLevel)

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	bus := event.NewBus()
	logNotifications(bus)
	recorder := runstats.Attach(bus)
	defer recorder.Detach()

	arenaCtx := combat.New(bus, combat.Options{
		Combo:       cfg.Combo,
		ChainRadius: cfg.ChainRadius,
		CellSize:    cfg.CellSize,
	})

	kind, random, err := cfg.ChaosChoice()
	if err != nil {
		return fmt.Errorf("choosing modifier: %w", err)
	}
	modifier := arenaCtx.ChooseModifier(kind, random, rng)

	sim, err := arena.New(cfg, arenaCtx, recorder, rng)
	if err != nil {
		return err
	}

	summaries := make(chan runstats.Summary, cfg.Simulation.Waves)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(summaries)
		if err := sim.Run(gctx, summaries); err != nil {
			return fmt.Errorf("simulation: %w", err)
		}
		slog.Info("simulation finished", "steps", sim.Steps())
		return nil
	})

	g.Go(func() error {
		if !cfg.Database.Enabled {
			for s := range summaries {
				logSummary(s)
			}
			return nil
		}
		if err := persist(gctx, cfg, modifier, summaries); err != nil {
			return fmt.Errorf("persisting run: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// persist stores the run and each wave summary as it arrives.
func persist(ctx context.Context, cfg config.Arena, modifier chaos.Kind, summaries <-chan runstats.Summary) error {
	dsn := cfg.Database.DSN()
	applied, err := db.RunMigrations(ctx, dsn)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied", "count", len(applied))

	database, err := db.New(ctx, dsn, db.WithMaxConns(2))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	repo := db.NewRunRepository(database.Pool())
	runID, err := repo.CreateRun(ctx, cfg.Seed, modifier)
	if err != nil {
		return err
	}
	slog.Info("run registered", "run_id", runID, "modifier", modifier.String())

	for s := range summaries {
		logSummary(s)
		if err := repo.SaveWave(ctx, runID, s); err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	return repo.FinishRun(ctx, runID)
}

// logNotifications mirrors the UI-facing events into the log.
func logNotifications(bus *event.Bus) {
	bus.Subscribe("log", func(e event.Event) {
		switch ev := e.(type) {
		case event.Notification:
			slog.Info("notification", "text", ev.Text)
		case combo.Triggered:
			slog.Debug("combo", "kind", ev.Kind.String(), "target", ev.TargetID, "damage", ev.Damage)
		}
	})
}

func logSummary(s runstats.Summary) {
	slog.Info("wave summary",
		"wave", s.Wave,
		"modifier", s.Modifier.String(),
		"combos", s.TotalCombos(),
		"chain_hits", s.ChainHits,
		"dot_ticks", s.DotTicks,
		"resisted", s.Resisted,
		"immune", s.Immune)
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
