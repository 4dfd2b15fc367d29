package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"heating_board/internal/models"
	"heating_board/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

var controlsColumns = []string{
	"floor_material", "floor_thickness_mm", "floor_max_c", "nichrome_final_c",
	"wire_tau_s", "wire_k_loss", "wire_c", "max_power_w",
}

func sampleControls() models.Controls {
	return models.Controls{
		FloorMaterial:    "slate",
		FloorThicknessMm: 40,
		FloorMaxC:        33,
		NichromeFinalC:   140,
		WireTauSec:       22.5,
		WireKLoss:        1.8,
		WireThermalC:     40.5,
		MaxPowerW:        250,
	}
}

func TestControlsSQLite_Save_UpsertsSingleRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	repo := repository.NewControlsSQLite(db)
	c := sampleControls()

	isTimestamp := sqlmockArgumentFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		return ok && len(s) == len("2006-01-02 15:04:05.000")
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO board_controls")).
		WithArgs(1, c.FloorMaterial, c.FloorThicknessMm, c.FloorMaxC, c.NichromeFinalC,
			c.WireTauSec, c.WireKLoss, c.WireThermalC, c.MaxPowerW, isTimestamp).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestControlsSQLite_Save_ExecErrorIsPropagated(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	repo := repository.NewControlsSQLite(db)
	wantErr := errors.New("disk full")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO board_controls")).WillReturnError(wantErr)

	if err := repo.Save(context.Background(), sampleControls()); !errors.Is(err, wantErr) {
		t.Fatalf("Save() error = %v, want %v", err, wantErr)
	}
}

func TestControlsSQLite_Load_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	repo := repository.NewControlsSQLite(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM board_controls WHERE id=?")).
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	c, found, err := repo.Load(context.Background())
	if err != nil || found || c != (models.Controls{}) {
		t.Fatalf("Load() = %+v, %v, %v; want zero, false, nil", c, found, err)
	}
}

func TestControlsSQLite_Load_HappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	repo := repository.NewControlsSQLite(db)
	want := sampleControls()
	rows := sqlmock.NewRows(controlsColumns).AddRow(
		want.FloorMaterial, want.FloorThicknessMm, want.FloorMaxC, want.NichromeFinalC,
		want.WireTauSec, want.WireKLoss, want.WireThermalC, want.MaxPowerW,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM board_controls WHERE id=?")).
		WithArgs(1).
		WillReturnRows(rows)

	got, found, err := repo.Load(context.Background())
	if err != nil || !found {
		t.Fatalf("Load() found=%v err=%v", found, err)
	}
	if got != want {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestControlsSQLite_Load_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	repo := repository.NewControlsSQLite(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM board_controls")).WillReturnError(errors.New("locked"))

	if _, _, err := repo.Load(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

type sqlmockArgumentFunc func(v driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool {
	return f(v)
}
