//go:build integration

package records

import (
	"context"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	database "github.com/FACorreiaa/go-interests-api/app/db"
	"github.com/FACorreiaa/go-interests-api/internal/notifier"
	"github.com/FACorreiaa/go-interests-api/internal/types"
)

var (
	testRecordsDB   *pgxpool.Pool
	testRecordsRepo RecordsRepository
)

func TestMain(m *testing.M) {
	if err := godotenv.Load("../../../.env.test"); err != nil {
		log.Println("Warning: .env.test file not found for records integration tests.")
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		log.Println("TEST_DATABASE_URL not set, skipping records integration tests")
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if err := database.RunMigrations(dbURL, logger); err != nil {
		log.Fatalf("Unable to migrate test database: %v\n", err)
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatalf("Unable to parse TEST_DATABASE_URL: %v\n", err)
	}
	config.MaxConns = 5

	testRecordsDB, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("Unable to create connection pool for records tests: %v\n", err)
	}
	testRecordsRepo = NewPostgresRecordsRepo(testRecordsDB, false, logger)

	exitCode := m.Run()
	testRecordsDB.Close()
	os.Exit(exitCode)
}

func clearRecordsTable(t *testing.T) {
	t.Helper()
	_, err := testRecordsDB.Exec(context.Background(), "TRUNCATE random_names_with_id RESTART IDENTITY")
	require.NoError(t, err, "Failed to clear random_names_with_id table")
}

func TestPostgresRecordsRepo_Integration(t *testing.T) {
	ctx := context.Background()
	clearRecordsTable(t)

	annID, err := testRecordsRepo.Create(ctx, types.CreateRecordRequest{Name: "Ann", Division: "Eng", Location: "NYC"})
	require.NoError(t, err)
	_, err = testRecordsRepo.Create(ctx, types.CreateRecordRequest{Name: "100%_fun", Division: "Ops", Location: "SFO"})
	require.NoError(t, err)

	t.Run("new record has no value", func(t *testing.T) {
		all, err := testRecordsRepo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, annID, all[0].ID)
		assert.Nil(t, all[0].Value)

		withInterest, err := testRecordsRepo.ListWithInterest(ctx)
		require.NoError(t, err)
		assert.Empty(t, withInterest)
	})

	t.Run("update sets value", func(t *testing.T) {
		require.NoError(t, testRecordsRepo.UpdateValue(ctx, annID, "hiking"))

		withInterest, err := testRecordsRepo.ListWithInterest(ctx)
		require.NoError(t, err)
		require.Len(t, withInterest, 1)
		assert.Equal(t, "hiking", *withInterest[0].Value)
	})

	t.Run("update unknown id", func(t *testing.T) {
		err := testRecordsRepo.UpdateValue(ctx, annID+1000, "chess")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		found, err := testRecordsRepo.Search(ctx, "%_")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "100%_fun", found[0].Name)

		found, err = testRecordsRepo.Search(ctx, "ann")
		require.NoError(t, err)
		assert.Empty(t, found, "LIKE is case sensitive")
	})
}

func TestRecordsService_PublishesOnUpdate_Integration(t *testing.T) {
	ctx := context.Background()
	clearRecordsTable(t)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	hub := notifier.NewHub(4, logger)
	defer hub.Close()
	events, cancel := hub.Subscribe()
	defer cancel()

	service := NewRecordsService(testRecordsRepo, hub, time.Minute, logger)
	id, err := service.Create(ctx, types.CreateRecordRequest{Name: "Bob", Division: "Ops", Location: "SFO"})
	require.NoError(t, err)
	<-events

	require.NoError(t, service.UpdateValue(ctx, id, "chess"))
	select {
	case ev := <-events:
		assert.Equal(t, notifier.TopicUpdate, ev.Topic)
	case <-time.After(time.Second):
		t.Fatal("no update event received")
	}
}
