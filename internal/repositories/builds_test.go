package repositories

import (
	"database/sql"
	"testing"

	"github.com/mixtape-cli/mixtape/internal/models"
	"github.com/mixtape-cli/mixtape/internal/shared"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func buildFixture(requestID string) *models.PersistedBuild {
	return models.NewPersistedBuild(0, models.BuildRecord{
		RequestID:       requestID,
		Event:           "leg day",
		Genre:           "grunge",
		Mood:            "hype",
		Artists:         []string{"Nirvana", "Soundgarden"},
		ContentPolicy:   "clean",
		DurationMinutes: 45,
		TrackCount:      11,
		PlaylistID:      "pl1",
		PlaylistURL:     "https://open.spotify.com/playlist/pl1",
	})
}

func TestBuildRepository(t *testing.T) {
	t.Run("Create assigns id and sequence", func(t *testing.T) {
		repo := NewBuildRepository(testDB(t))

		build := buildFixture("req-1")
		if err := repo.Create(build); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if build.ID() == "" {
			t.Error("Create did not assign an ID")
		}
		if build.Sequence() != 1 {
			t.Errorf("sequence = %d, want 1", build.Sequence())
		}

		second := buildFixture("req-2")
		if err := repo.Create(second); err != nil {
			t.Fatalf("Create() second error = %v", err)
		}
		if second.Sequence() != 2 {
			t.Errorf("second sequence = %d, want 2", second.Sequence())
		}
	})

	t.Run("Create rejects missing request id", func(t *testing.T) {
		repo := NewBuildRepository(testDB(t))

		if err := repo.Create(buildFixture("")); err == nil {
			t.Error("Create without request id should fail validation")
		}
	})

	t.Run("Get round-trips the record", func(t *testing.T) {
		repo := NewBuildRepository(testDB(t))

		build := buildFixture("req-1")
		if err := repo.Create(build); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.Get(build.ID())
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		record := got.Record()
		if record.Genre != "grunge" || record.Mood != "hype" {
			t.Errorf("record = %+v, want grunge/hype", record)
		}
		if len(record.Artists) != 2 || record.Artists[0] != "Nirvana" {
			t.Errorf("artists = %v, want [Nirvana Soundgarden]", record.Artists)
		}
		if record.TrackCount != 11 {
			t.Errorf("track count = %d, want 11", record.TrackCount)
		}
	})

	t.Run("GetByRequestID", func(t *testing.T) {
		repo := NewBuildRepository(testDB(t))

		build := buildFixture("req-42")
		if err := repo.Create(build); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.GetByRequestID("req-42")
		if err != nil {
			t.Fatalf("GetByRequestID() error = %v", err)
		}
		if got.ID() != build.ID() {
			t.Errorf("got ID %s, want %s", got.ID(), build.ID())
		}

		if _, err := repo.GetByRequestID("req-unknown"); err == nil {
			t.Error("GetByRequestID for unknown request should fail")
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewBuildRepository(testDB(t))

		build := buildFixture("req-1")
		if err := repo.Create(build); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		record := build.Record()
		record.TrackCount = 20
		record.PlaylistURL = "https://open.spotify.com/playlist/updated"
		build.SetRecord(record)

		if err := repo.Update(build); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		got, err := repo.Get(build.ID())
		if err != nil {
			t.Fatalf("Get() after update error = %v", err)
		}
		if got.Record().TrackCount != 20 {
			t.Errorf("track count = %d, want 20", got.Record().TrackCount)
		}
	})

	t.Run("Delete is soft", func(t *testing.T) {
		repo := NewBuildRepository(testDB(t))

		build := buildFixture("req-1")
		if err := repo.Create(build); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if err := repo.Delete(build.ID()); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := repo.Get(build.ID()); err == nil {
			t.Error("Get after delete should fail")
		}
		if err := repo.Delete(build.ID()); err == nil {
			t.Error("double delete should fail")
		}
	})

	t.Run("List with criteria", func(t *testing.T) {
		repo := NewBuildRepository(testDB(t))

		grunge := buildFixture("req-1")
		if err := repo.Create(grunge); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		jazz := buildFixture("req-2")
		record := jazz.Record()
		record.Genre = "jazz"
		record.ContentPolicy = "any"
		jazz.SetRecord(record)
		if err := repo.Create(jazz); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("List() returned %d builds, want 2", len(all))
		}
		// Ordered by sequence.
		if all[0].Record().RequestID != "req-1" {
			t.Errorf("first build = %s, want req-1", all[0].Record().RequestID)
		}

		onlyJazz, err := repo.List(map[string]any{"genre": "jazz"})
		if err != nil {
			t.Fatalf("List(genre) error = %v", err)
		}
		if len(onlyJazz) != 1 || onlyJazz[0].Record().Genre != "jazz" {
			t.Errorf("List(genre=jazz) = %d builds, want 1 jazz build", len(onlyJazz))
		}

		onlyClean, err := repo.List(map[string]any{"content_policy": "clean"})
		if err != nil {
			t.Fatalf("List(content_policy) error = %v", err)
		}
		if len(onlyClean) != 1 {
			t.Errorf("List(content_policy=clean) = %d builds, want 1", len(onlyClean))
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := testDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "builds")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if got != want {
			t.Errorf("NextSequence() = %d, want %d", got, want)
		}
	}
}
