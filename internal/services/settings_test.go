package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abrezinsky/roundops/internal/logger"
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/repository/mock"
	"github.com/abrezinsky/roundops/internal/services"
	"github.com/abrezinsky/roundops/internal/testutil"
)

// TestLoadMode_Default tests that a fresh database holds auto mode
func TestLoadMode_Default(t *testing.T) {
	svc := services.NewSettingsService(logger.Discard(), testutil.NewTestRepository(t))
	mode, ok := svc.LoadMode(context.Background())
	if !ok || mode != models.ModeAuto {
		t.Errorf("expected stored auto mode, got %q, %v", mode, ok)
	}
}

// TestSaveMode_PersistsAndBroadcasts tests saving the mode
func TestSaveMode_PersistsAndBroadcasts(t *testing.T) {
	svc := services.NewSettingsService(logger.Discard(), testutil.NewTestRepository(t))
	b := &recordingBroadcaster{}
	svc.SetBroadcaster(b)
	ctx := context.Background()

	if err := svc.SaveMode(ctx, models.ModeManual); err != nil {
		t.Fatalf("SaveMode failed: %v", err)
	}
	if svc.Mode(ctx) != models.ModeManual {
		t.Errorf("expected manual, got %s", svc.Mode(ctx))
	}
	if len(b.modes) != 1 || b.modes[0] != models.ModeManual {
		t.Errorf("expected manual broadcast, got %v", b.modes)
	}
}

// TestLoadMode_Unreadable tests that storage failures fall back to absent
func TestLoadMode_Unreadable(t *testing.T) {
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	repo.GetSettingError = errors.New("database is locked")
	svc := services.NewSettingsService(logger.Discard(), repo)

	if _, ok := svc.LoadMode(context.Background()); ok {
		t.Error("expected no mode on read failure")
	}
	if svc.Mode(context.Background()) != models.ModeAuto {
		t.Error("expected auto fallback")
	}
}

// TestLoadMode_GarbageValue tests that an unknown stored value is ignored
func TestLoadMode_GarbageValue(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewSettingsService(logger.Discard(), repo)
	ctx := context.Background()

	repo.SetSetting(ctx, models.ModeSettingKey, "sometimes")
	if _, ok := svc.LoadMode(ctx); ok {
		t.Error("expected unknown value to be ignored")
	}
}

// TestSaveMode_Error tests that write failures are returned to the caller
func TestSaveMode_Error(t *testing.T) {
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	repo.SetSettingError = errors.New("read-only database")
	svc := services.NewSettingsService(logger.Discard(), repo)
	b := &recordingBroadcaster{}
	svc.SetBroadcaster(b)

	if err := svc.SaveMode(context.Background(), models.ModeManual); err == nil {
		t.Error("expected error")
	}
	if len(b.modes) != 0 {
		t.Error("expected no broadcast on failure")
	}
}

// TestResetTables tests table validation and clearing
func TestResetTables(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewSettingsService(logger.Discard(), repo)
	b := &recordingBroadcaster{}
	svc.SetBroadcaster(b)
	ctx := context.Background()

	if _, err := svc.ResetTables(ctx, nil); err != services.ErrNoTablesSpecified {
		t.Errorf("expected ErrNoTablesSpecified, got %v", err)
	}
	var tableErr *services.InvalidTableError
	if _, err := svc.ResetTables(ctx, []string{"users"}); !errors.As(err, &tableErr) {
		t.Errorf("expected InvalidTableError, got %v", err)
	}

	svc.SaveMode(ctx, models.ModeManual)
	res, err := svc.ResetTables(ctx, []string{"settings", "operation_log"})
	if err != nil {
		t.Fatalf("ResetTables failed: %v", err)
	}
	if len(res.Tables) != 2 {
		t.Errorf("expected 2 tables, got %v", res.Tables)
	}
	if svc.Mode(ctx) != models.ModeAuto {
		t.Errorf("expected auto after settings reset, got %s", svc.Mode(ctx))
	}
	if last := b.modes[len(b.modes)-1]; last != models.ModeAuto {
		t.Errorf("expected auto broadcast, got %s", last)
	}
}

// TestResetTables_ClearError tests repository failures
func TestResetTables_ClearError(t *testing.T) {
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	repo.ClearTableError = errors.New("disk I/O error")
	svc := services.NewSettingsService(logger.Discard(), repo)

	if _, err := svc.ResetTables(context.Background(), []string{"operation_log"}); err == nil {
		t.Error("expected error")
	}
}
