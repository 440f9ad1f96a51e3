// package models defines the data model for the playlist builder
package models

import (
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// BuildRecord captures the parameters and outcome of a playlist build.
type BuildRecord struct {
	RequestID       string
	Event           string
	Genre           string
	Mood            string
	Artists         []string
	ContentPolicy   string
	DurationMinutes int
	TrackCount      int
	PlaylistID      string
	PlaylistURL     string
}

// ArtistsCSV renders the artist list for storage.
func (b BuildRecord) ArtistsCSV() string {
	return strings.Join(b.Artists, ",")
}

// ParseArtistsCSV splits a stored artist list.
func ParseArtistsCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	return strings.Split(csv, ",")
}

// PersistedBuild wraps a BuildRecord with persistence bookkeeping.
type PersistedBuild struct {
	id        string
	sequence  int
	record    BuildRecord
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedBuild creates a PersistedBuild ready for insertion.
func NewPersistedBuild(sequence int, record BuildRecord) *PersistedBuild {
	now := time.Now()
	return &PersistedBuild{
		sequence:  sequence,
		record:    record,
		createdAt: now,
		updatedAt: now,
	}
}

func (b *PersistedBuild) ID() string            { return b.id }
func (b *PersistedBuild) Sequence() int         { return b.sequence }
func (b *PersistedBuild) Record() BuildRecord   { return b.record }
func (b *PersistedBuild) CreatedAt() time.Time  { return b.createdAt }
func (b *PersistedBuild) UpdatedAt() time.Time  { return b.updatedAt }
func (b *PersistedBuild) DeletedAt() *time.Time { return b.deletedAt }

func (b *PersistedBuild) SetID(id string)           { b.id = id }
func (b *PersistedBuild) SetSequence(seq int)       { b.sequence = seq }
func (b *PersistedBuild) SetCreatedAt(t time.Time)  { b.createdAt = t }
func (b *PersistedBuild) SetUpdatedAt(t time.Time)  { b.updatedAt = t }
func (b *PersistedBuild) SetDeletedAt(t *time.Time) { b.deletedAt = t }
func (b *PersistedBuild) SetRecord(r BuildRecord)   { b.record = r }

// Validate checks that required bookkeeping fields are present.
func (b *PersistedBuild) Validate() error {
	if b.id == "" {
		return fmt.Errorf("build id is required")
	}
	if b.record.RequestID == "" {
		return fmt.Errorf("build request id is required")
	}
	return nil
}
