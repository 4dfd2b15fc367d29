package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"heating_board/internal/models"
)

type ControlsSQLite struct {
	db *sql.DB
}

func NewControlsSQLite(db *sql.DB) *ControlsSQLite {
	return &ControlsSQLite{db: db}
}

const (
	boardControlsRowID = 1

	upsertControlsSQL = `
		INSERT INTO board_controls (id, floor_material, floor_thickness_mm, floor_max_c, nichrome_final_c,
			wire_tau_s, wire_k_loss, wire_c, max_power_w, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			floor_material=excluded.floor_material,
			floor_thickness_mm=excluded.floor_thickness_mm,
			floor_max_c=excluded.floor_max_c,
			nichrome_final_c=excluded.nichrome_final_c,
			wire_tau_s=excluded.wire_tau_s,
			wire_k_loss=excluded.wire_k_loss,
			wire_c=excluded.wire_c,
			max_power_w=excluded.max_power_w,
			updated_at=excluded.updated_at
	`

	selectControlsSQL = `
		SELECT floor_material, floor_thickness_mm, floor_max_c, nichrome_final_c,
			wire_tau_s, wire_k_loss, wire_c, max_power_w
		FROM board_controls WHERE id=?
	`
)

// Save updates or inserts the board_controls row (id always 1).
func (r *ControlsSQLite) Save(ctx context.Context, c models.Controls) error {
	_, err := r.db.ExecContext(ctx, upsertControlsSQL,
		boardControlsRowID,
		c.FloorMaterial,
		c.FloorThicknessMm,
		c.FloorMaxC,
		c.NichromeFinalC,
		c.WireTauSec,
		c.WireKLoss,
		c.WireThermalC,
		c.MaxPowerW,
		time.Now().UTC().Format(eventTimeLayout),
	)
	return err
}

// Load fetches the single board_controls row (id=1).
func (r *ControlsSQLite) Load(ctx context.Context) (models.Controls, bool, error) {
	row := r.db.QueryRowContext(ctx, selectControlsSQL, boardControlsRowID)

	var c models.Controls
	if err := row.Scan(
		&c.FloorMaterial,
		&c.FloorThicknessMm,
		&c.FloorMaxC,
		&c.NichromeFinalC,
		&c.WireTauSec,
		&c.WireKLoss,
		&c.WireThermalC,
		&c.MaxPowerW,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Controls{}, false, nil // nothing saved yet
		}
		return models.Controls{}, false, err
	}
	return c, true, nil
}
