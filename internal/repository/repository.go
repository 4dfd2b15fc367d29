package repository

import (
	"context"
	"database/sql"
	"time"

	"heating_board/internal/models"
)

// EventRepo is the append-only device event log.
type EventRepo interface {
	Append(ctx context.Context, e models.DeviceEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error)
}

// ControlsRepo stores the single board_controls row.
type ControlsRepo interface {
	Save(ctx context.Context, c models.Controls) error
	// Load reports found=false when no controls were saved yet.
	Load(ctx context.Context) (c models.Controls, found bool, err error)
}

type Repository struct {
	EventRepo    EventRepo
	ControlsRepo ControlsRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo:    NewEventSQLite(db),
		ControlsRepo: NewControlsSQLite(db),
	}
}
