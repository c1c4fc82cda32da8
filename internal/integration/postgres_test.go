//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"netclass-console/internal/config"
	"netclass-console/internal/database"
	"netclass-console/internal/model"
	"netclass-console/internal/repository"
)

// skipIfNoDocker skips the test if Docker is not available
func skipIfNoDocker(t *testing.T) {
	t.Helper()

	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Docker not available (panic recovered): %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		t.Skipf("Docker not available, skipping integration test: %v", err)
		return
	}
	defer provider.Close()

	if _, err := provider.Client().Ping(ctx); err != nil {
		t.Skipf("Docker not responding, skipping integration test: %v", err)
	}
}

// newPostgresStore starts a PostgreSQL container, applies the migrations and
// seeds the test admin and the "Lab A" location.
func newPostgresStore(t *testing.T) repository.Store {
	t.Helper()
	skipIfNoDocker(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("netclass_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := database.Open(dsn, config.DatabaseConfig{MaxOpenConns: 5, MaxIdleConns: 5})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	// Migrations are idempotent
	if err := database.RunMigrations(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("failed to re-apply migrations: %v", err)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO location (location_name, floor) VALUES ('Lab A', 1), ('', 2)`); err != nil {
		t.Fatalf("failed to seed locations: %v", err)
	}
	seedAdmin(t, func(username, hash, name string) {
		if _, err := db.ExecContext(ctx, `INSERT INTO admin (username, password_hash, name) VALUES ($1, $2, $3)`, username, hash, name); err != nil {
			t.Fatalf("failed to seed admin: %v", err)
		}
	})

	return repository.NewPostgresStore(db, 10*time.Second)
}

func TestIntegration_PostgresConsoleWorkflow(t *testing.T) {
	store := newPostgresStore(t)
	server := newConsoleServer(t, store)
	defer server.maintenance.WaitForAlerts()

	runConsoleWorkflow(t, server)
}

func TestIntegration_PostgresProcedures(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	if err := store.RegisterPC(ctx, model.PCRegistration{Name: "Lab-01", LocationID: 1, IPAddress: "10.0.0.5"}); err != nil {
		t.Fatalf("RegisterPC failed: %v", err)
	}
	if err := store.RegisterPC(ctx, model.PCRegistration{Name: "Lab-02", LocationID: 2, IPAddress: "10.0.0.6"}); err != nil {
		t.Fatalf("RegisterPC failed: %v", err)
	}

	t.Run("Duplicate address is reported", func(t *testing.T) {
		err := store.RegisterPC(ctx, model.PCRegistration{Name: "Lab-03", LocationID: 1, IPAddress: "10.0.0.5"})
		var procErr *repository.ProcedureError
		if !errors.As(err, &procErr) || procErr.Message != repository.MsgDuplicateIPAddress {
			t.Errorf("Expected %q, got %v", repository.MsgDuplicateIPAddress, err)
		}
	})

	t.Run("Snapshot slot rules", func(t *testing.T) {
		if err := store.CreateSnapshot(ctx, 1, 2, "After updates"); err != nil {
			t.Fatalf("CreateSnapshot failed: %v", err)
		}
		err := store.CreateSnapshot(ctx, 1, 2, "Again")
		var procErr *repository.ProcedureError
		if !errors.As(err, &procErr) || procErr.Message != repository.MsgSlotInUse {
			t.Errorf("Expected %q, got %v", repository.MsgSlotInUse, err)
		}
	})

	t.Run("Cross-PC active snapshot is rejected", func(t *testing.T) {
		snapshots, err := store.ListSnapshots(ctx, 2)
		if err != nil || len(snapshots) == 0 {
			t.Fatalf("ListSnapshots failed: %v", err)
		}
		if err := store.SetActiveSnapshot(ctx, 1, snapshots[0].ID); err != repository.ErrSnapshotNotOwnedBy {
			t.Errorf("Expected ErrSnapshotNotOwnedBy, got %v", err)
		}
	})

	t.Run("Maintenance skips Persistent PCs", func(t *testing.T) {
		if err := store.ChangeMode(ctx, 2, model.ModePersistent, 1); err != nil {
			t.Fatalf("ChangeMode failed: %v", err)
		}
		if err := store.InstallSoftware(ctx, 1, "Game"); err != nil {
			t.Fatalf("InstallSoftware failed: %v", err)
		}
		if err := store.InstallSoftware(ctx, 2, "IDE"); err != nil {
			t.Fatalf("InstallSoftware failed: %v", err)
		}

		msg, err := store.RunNightlyMaintenance(ctx)
		if err != nil {
			t.Fatalf("RunNightlyMaintenance failed: %v", err)
		}
		if msg != "Restored 1 PCs (1 programs removed)" {
			t.Errorf("Unexpected maintenance message %q", msg)
		}

		kept, err := store.ListSoftware(ctx, 2)
		if err != nil || len(kept) != 1 {
			t.Errorf("Expected the Persistent PC to keep its software, got %v (%v)", kept, err)
		}
	})

	t.Run("Analytics", func(t *testing.T) {
		rollup, err := store.LocationRollup(ctx)
		if err != nil {
			t.Fatalf("LocationRollup failed: %v", err)
		}
		last := rollup[len(rollup)-1]
		if last.Kind() != model.RollupGrandTotal || last.PCCount != 2 {
			t.Errorf("Expected a grand total of 2 as the last row, got %+v", last)
		}
	})
}
