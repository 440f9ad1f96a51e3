package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mixtape-cli/mixtape/internal/models"
	"github.com/mixtape-cli/mixtape/internal/repositories"
	"github.com/mixtape-cli/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// historyEntry is the JSON-friendly projection of a persisted build.
type historyEntry struct {
	ID        string             `json:"id"`
	Sequence  int                `json:"sequence"`
	CreatedAt time.Time          `json:"created_at"`
	Record    models.BuildRecord `json:"record"`
}

func toHistoryEntry(build *models.PersistedBuild) historyEntry {
	return historyEntry{
		ID:        build.ID(),
		Sequence:  build.Sequence(),
		CreatedAt: build.CreatedAt(),
		Record:    build.Record(),
	}
}

// openBuilds opens the configured history database. Callers close the handle.
func (r *Runner) openBuilds() (*sql.DB, *repositories.BuildRepository, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return db, repositories.NewBuildRepository(db), nil
}

// HistoryList lists recorded builds, optionally filtered by genre or policy.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openBuilds()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if genre := cmd.String("genre"); genre != "" {
		criteria["genre"] = genre
	}
	if policy := cmd.String("policy"); policy != "" {
		criteria["content_policy"] = policy
	}

	builds, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list builds (run 'mixtape setup' to initialize history): %w", err)
	}

	if limit := cmd.Int("limit"); limit > 0 && limit < len(builds) {
		builds = builds[:limit]
	}

	if cmd.Bool("json") {
		entries := make([]historyEntry, 0, len(builds))
		for _, build := range builds {
			entries = append(entries, toHistoryEntry(build))
		}
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	if len(builds) == 0 {
		return r.writePlain("No builds recorded\n")
	}

	for _, build := range builds {
		record := build.Record()
		r.writePlain("#%d  %s  genre=%s mood=%s policy=%s tracks=%d\n",
			build.Sequence(),
			build.CreatedAt().Format("2006-01-02 15:04"),
			orDash(record.Genre),
			orDash(record.Mood),
			record.ContentPolicy,
			record.TrackCount,
		)
		if record.PlaylistURL != "" {
			r.writePlain("     %s\n", record.PlaylistURL)
		}
	}
	return nil
}

// HistoryShow prints one build, looked up by ID or request ID.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: build id is required", shared.ErrMissingArgument)
	}

	db, repo, err := r.openBuilds()
	if err != nil {
		return err
	}
	defer db.Close()

	build, err := repo.Get(id)
	if err != nil {
		if build, err = repo.GetByRequestID(id); err != nil {
			return fmt.Errorf("build %s not found: %w", id, err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(toHistoryEntry(build), cmd.Bool("pretty"))
	}

	record := build.Record()
	r.writePlainHeader(fmt.Sprintf("Build #%d", build.Sequence()))
	r.writePlain("ID: %s\n", build.ID())
	r.writePlain("Request: %s\n", record.RequestID)
	r.writePlain("Created: %s\n", build.CreatedAt().Format(time.RFC3339))
	r.writePlain("Event: %s\n", orDash(record.Event))
	r.writePlain("Genre: %s\n", orDash(record.Genre))
	r.writePlain("Mood: %s\n", orDash(record.Mood))
	r.writePlain("Artists: %s\n", orDash(record.ArtistsCSV()))
	r.writePlain("Policy: %s\n", record.ContentPolicy)
	r.writePlain("Duration: %d minutes\n", record.DurationMinutes)
	r.writePlain("Tracks: %d\n", record.TrackCount)
	if record.PlaylistURL != "" {
		r.writePlain("URL: %s\n", record.PlaylistURL)
	}
	return nil
}

// HistoryDelete soft-deletes a recorded build.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: build id is required", shared.ErrMissingArgument)
	}

	db, repo, err := r.openBuilds()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete build %s: %w", id, err)
	}

	r.logger.Info("build deleted", "id", id)
	return r.writePlain("Deleted build %s\n", id)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
