package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mixtape-cli/mixtape/internal/models"
	"github.com/mixtape-cli/mixtape/internal/shared"
)

// BuildRepository implements models.Repository[*models.PersistedBuild] for
// the local build-history store.
//
// Every completed build is recorded so operators can audit what was built
// for which request; soft deletes keep history recoverable.
type BuildRepository struct {
	db *sql.DB
}

// NewBuildRepository creates a new BuildRepository with the given database connection
func NewBuildRepository(db *sql.DB) *BuildRepository {
	return &BuildRepository{db: db}
}

// Create inserts a new [models.PersistedBuild] into the database with generated ID and sequence
func (r *BuildRepository) Create(build *models.PersistedBuild) error {
	sequence, err := NextSequence(r.db, "builds")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	build.SetSequence(sequence)
	build.SetID(shared.GenerateID())

	if err := build.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	record := build.Record()

	query := `
		INSERT INTO builds (id, sequence, request_id, event, genre, mood, artists, content_policy, duration_minutes, track_count, playlist_id, playlist_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		build.ID(),
		build.Sequence(),
		record.RequestID,
		record.Event,
		record.Genre,
		record.Mood,
		record.ArtistsCSV(),
		record.ContentPolicy,
		record.DurationMinutes,
		record.TrackCount,
		record.PlaylistID,
		record.PlaylistURL,
		build.CreatedAt(),
		build.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert build: %w", err)
	}

	return nil
}

// Get retrieves a build by ID, excluding soft-deleted builds
func (r *BuildRepository) Get(id string) (*models.PersistedBuild, error) {
	query := selectColumns + ` WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByRequestID retrieves a build by its request correlation ID
func (r *BuildRepository) GetByRequestID(requestID string) (*models.PersistedBuild, error) {
	query := selectColumns + ` WHERE request_id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, requestID))
}

// Update modifies an existing build in the database
func (r *BuildRepository) Update(build *models.PersistedBuild) error {
	if err := build.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	build.SetUpdatedAt(now)
	record := build.Record()

	query := `
		UPDATE builds
		SET event = ?, genre = ?, mood = ?, artists = ?, content_policy = ?, duration_minutes = ?, track_count = ?, playlist_id = ?, playlist_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		record.Event,
		record.Genre,
		record.Mood,
		record.ArtistsCSV(),
		record.ContentPolicy,
		record.DurationMinutes,
		record.TrackCount,
		record.PlaylistID,
		record.PlaylistURL,
		now,
		build.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update build: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("build not found or already deleted: %s", build.ID())
	}

	return nil
}

// Delete soft-deletes a build by ID
func (r *BuildRepository) Delete(id string) error {
	query := `
		UPDATE builds
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete build: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("build not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all builds matching the given criteria, excluding soft-deleted builds
func (r *BuildRepository) List(criteria map[string]any) ([]*models.PersistedBuild, error) {
	query := selectColumns + ` WHERE deleted_at IS NULL`
	args := []any{}

	if genre, ok := criteria["genre"].(string); ok && genre != "" {
		query += " AND genre = ?"
		args = append(args, genre)
	}

	if policy, ok := criteria["content_policy"].(string); ok && policy != "" {
		query += " AND content_policy = ?"
		args = append(args, policy)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query builds: %w", err)
	}
	defer rows.Close()

	var builds []*models.PersistedBuild
	for rows.Next() {
		build, err := scanBuild(rows.Scan)
		if err != nil {
			return nil, err
		}
		builds = append(builds, build)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return builds, nil
}

const selectColumns = `
	SELECT id, sequence, request_id, event, genre, mood, artists, content_policy, duration_minutes, track_count, playlist_id, playlist_url, created_at, updated_at, deleted_at
	FROM builds`

// scanOne scans a single [sql.Row] into a [models.PersistedBuild]
func (r *BuildRepository) scanOne(row *sql.Row) (*models.PersistedBuild, error) {
	build, err := scanBuild(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("build not found")
	}
	return build, err
}

// scanBuild scans one row using the provided scan function.
func scanBuild(scan func(dest ...any) error) (*models.PersistedBuild, error) {
	var (
		id              string
		sequence        int
		requestID       string
		event           string
		genre           string
		mood            string
		artists         string
		contentPolicy   string
		durationMinutes int
		trackCount      int
		playlistID      string
		playlistURL     string
		createdAt       time.Time
		updatedAt       time.Time
		deletedAt       sql.NullTime
	)

	err := scan(&id, &sequence, &requestID, &event, &genre, &mood, &artists, &contentPolicy, &durationMinutes, &trackCount, &playlistID, &playlistURL, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan build: %w", err)
	}

	record := models.BuildRecord{
		RequestID:       requestID,
		Event:           event,
		Genre:           genre,
		Mood:            mood,
		Artists:         models.ParseArtistsCSV(artists),
		ContentPolicy:   contentPolicy,
		DurationMinutes: durationMinutes,
		TrackCount:      trackCount,
		PlaylistID:      playlistID,
		PlaylistURL:     playlistURL,
	}

	build := models.NewPersistedBuild(sequence, record)
	build.SetID(id)
	build.SetCreatedAt(createdAt)
	build.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		build.SetDeletedAt(&deletedAt.Time)
	}

	return build, nil
}
