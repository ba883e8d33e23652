package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/elemental/internal/chaos"
	"github.com/udisondev/elemental/internal/combo"
	"github.com/udisondev/elemental/internal/element"
	"github.com/udisondev/elemental/internal/runstats"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// RunRow represents a row from arena_runs.
type RunRow struct {
	ID       int64
	Seed     uint64
	Modifier chaos.Kind
	Finished bool
}

// RunRepository persists run summaries. Effect state itself is never stored.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// CreateRun inserts a run and returns its id.
func (r *RunRepository) CreateRun(ctx context.Context, seed uint64, modifier chaos.Kind) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO arena_runs (seed, modifier) VALUES ($1, $2) RETURNING id`,
		int64(seed), modifier.Key(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// FinishRun stamps finished_at.
func (r *RunRepository) FinishRun(ctx context.Context, runID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE arena_runs SET finished_at = now() WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("finishing run %d: %w", runID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finishing run %d: %w", runID, ErrRunNotFound)
	}
	return nil
}

// GetRun loads one run row.
func (r *RunRepository) GetRun(ctx context.Context, runID int64) (RunRow, error) {
	var (
		row      RunRow
		seed     int64
		modifier string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, seed, modifier, finished_at IS NOT NULL FROM arena_runs WHERE id = $1`, runID,
	).Scan(&row.ID, &seed, &modifier, &row.Finished)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RunRow{}, fmt.Errorf("loading run %d: %w", runID, ErrRunNotFound)
		}
		return RunRow{}, fmt.Errorf("loading run %d: %w", runID, err)
	}
	row.Seed = uint64(seed)
	row.Modifier, err = chaos.Parse(modifier)
	if err != nil {
		return RunRow{}, fmt.Errorf("loading run %d: %w", runID, err)
	}
	return row, nil
}

// SaveWave upserts one wave summary.
func (r *RunRepository) SaveWave(ctx context.Context, runID int64, s runstats.Summary) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO arena_wave_summaries (
			run_id, wave, modifier,
			fire_applied, ice_applied, lightning_applied, poison_applied,
			dot_damage, dot_ticks, chain_hits, chain_damage, area_damage,
			steam_explosions, toxic_clouds, shatters, electro_poisons,
			resisted, immune)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 ON CONFLICT (run_id, wave) DO UPDATE SET
			modifier = EXCLUDED.modifier,
			fire_applied = EXCLUDED.fire_applied,
			ice_applied = EXCLUDED.ice_applied,
			lightning_applied = EXCLUDED.lightning_applied,
			poison_applied = EXCLUDED.poison_applied,
			dot_damage = EXCLUDED.dot_damage,
			dot_ticks = EXCLUDED.dot_ticks,
			chain_hits = EXCLUDED.chain_hits,
			chain_damage = EXCLUDED.chain_damage,
			area_damage = EXCLUDED.area_damage,
			steam_explosions = EXCLUDED.steam_explosions,
			toxic_clouds = EXCLUDED.toxic_clouds,
			shatters = EXCLUDED.shatters,
			electro_poisons = EXCLUDED.electro_poisons,
			resisted = EXCLUDED.resisted,
			immune = EXCLUDED.immune`,
		runID, s.Wave, s.Modifier.Key(),
		s.EffectsApplied[element.Fire], s.EffectsApplied[element.Ice],
		s.EffectsApplied[element.Lightning], s.EffectsApplied[element.Poison],
		s.DotDamage, s.DotTicks, s.ChainHits, s.ChainDamage, s.AreaDamage,
		s.Combos[combo.SteamExplosion], s.Combos[combo.ToxicCloud],
		s.Combos[combo.Shatter], s.Combos[combo.ElectroPoison],
		s.Resisted, s.Immune,
	)
	if err != nil {
		return fmt.Errorf("saving wave %d of run %d: %w", s.Wave, runID, err)
	}
	return nil
}

// LoadWaves returns every wave summary of a run ordered by wave.
// Expiry counts are not persisted and come back as zero.
func (r *RunRepository) LoadWaves(ctx context.Context, runID int64) ([]runstats.Summary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT wave, modifier,
			fire_applied, ice_applied, lightning_applied, poison_applied,
			dot_damage, dot_ticks, chain_hits, chain_damage, area_damage,
			steam_explosions, toxic_clouds, shatters, electro_poisons,
			resisted, immune
		 FROM arena_wave_summaries WHERE run_id = $1 ORDER BY wave`, runID)
	if err != nil {
		return nil, fmt.Errorf("query wave summaries of run %d: %w", runID, err)
	}
	defer rows.Close()

	var result []runstats.Summary
	for rows.Next() {
		var (
			s        runstats.Summary
			modifier string
		)
		if err := rows.Scan(
			&s.Wave, &modifier,
			&s.EffectsApplied[element.Fire], &s.EffectsApplied[element.Ice],
			&s.EffectsApplied[element.Lightning], &s.EffectsApplied[element.Poison],
			&s.DotDamage, &s.DotTicks, &s.ChainHits, &s.ChainDamage, &s.AreaDamage,
			&s.Combos[combo.SteamExplosion], &s.Combos[combo.ToxicCloud],
			&s.Combos[combo.Shatter], &s.Combos[combo.ElectroPoison],
			&s.Resisted, &s.Immune,
		); err != nil {
			return nil, fmt.Errorf("scan wave summary: %w", err)
		}
		if s.Modifier, err = chaos.Parse(modifier); err != nil {
			return nil, fmt.Errorf("scan wave summary: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wave summaries: %w", err)
	}
	return result, nil
}
