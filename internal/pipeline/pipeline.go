// package pipeline implements the playlist build pipeline: vocabulary and
// era resolution, tiered candidate acquisition, content filtering, segment
// assembly, and playlist materialization.
//
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers. A build is strictly sequential and
// all-or-nothing: it returns a created playlist or a typed error that lets
// the caller distinguish "no candidates" from "authentication failure".
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mixtape-cli/mixtape/internal/catalog"
	"github.com/mixtape-cli/mixtape/internal/era"
	"github.com/mixtape-cli/mixtape/internal/shared"
	"github.com/mixtape-cli/mixtape/internal/vocab"
)

// Scoring mix for the final ordering: popularity dominates, era affinity
// nudges generationally relevant material upward.
const (
	popularityWeight = 0.7
	eraWeight        = 0.3
)

// CatalogAPI is the catalog surface the pipeline consumes. The concrete
// implementation is [catalog.Client]; tests substitute a mock.
type CatalogAPI interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]catalog.Track, error)
	SearchArtist(ctx context.Context, name string) (*catalog.Artist, error)
	Recommendations(ctx context.Context, seeds catalog.Seeds, tunables map[string]float64, limit int) ([]catalog.Track, error)
	SeveralTracks(ctx context.Context, trackIDs []string) ([]catalog.Track, error)
	AudioFeatures(ctx context.Context, trackIDs []string) (map[string]catalog.AudioFeatures, error)
	ArtistTopTracks(ctx context.Context, artistID string) ([]catalog.Track, error)
	CurrentUser(ctx context.Context) (*catalog.User, error)
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*catalog.Playlist, error)
	AddTracks(ctx context.Context, playlistID string, uris []string) error
}

// BuildRequest is the caller contract for one playlist build.
type BuildRequest struct {
	// RequestID is used only for logging correlation; the pipeline does not
	// deduplicate requests by it. Generated when empty.
	RequestID string

	Event           string
	Genre           string
	Mood            string
	Keywords        []string
	Artists         []string
	DurationMinutes int
	ContentPolicy   string
	BirthYear       int

	// Segments, when present, switches assembly to tempo/energy windows.
	Segments []Segment

	Name   string // Playlist name; derived from event/mood/genre when empty
	Public bool
	DryRun bool // Assemble but skip playlist creation
}

// BuildResult is the outcome of a successful build.
type BuildResult struct {
	RequestID   string
	Name        string
	Tracks      []catalog.Candidate
	URIs        []string
	Playlist    *catalog.Playlist // nil for dry runs
	URL         string            // empty for dry runs
	Constraints Constraints
}

// TotalDurationMS sums the assembled track durations.
func (r *BuildResult) TotalDurationMS() int {
	total := 0
	for _, t := range r.Tracks {
		total += t.DurationMS
	}
	return total
}

// Engine orchestrates playlist builds against a catalog client.
type Engine struct {
	catalog CatalogAPI
	vocab   *vocab.Vocabulary
	logger  *log.Logger
}

// NewEngine creates an Engine with the provided catalog client.
func NewEngine(api CatalogAPI, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		catalog: api,
		vocab:   vocab.NewVocabulary(logger),
		logger:  logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Build runs the full pipeline for one request.
func (e *Engine) Build(ctx context.Context, req BuildRequest, progress chan<- ProgressUpdate) (*BuildResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable)
	}

	if req.RequestID == "" {
		req.RequestID = shared.GenerateID()
	}
	logger := shared.WithLogger(e.logger, "request_id", req.RequestID)

	constraints, err := e.prepare(ctx, req, progress)
	if err != nil {
		return nil, err
	}
	logger.Info("constraints resolved",
		"target_count", constraints.TargetCount,
		"genre", constraints.GenreSeed,
		"policy", constraints.Policy,
		"artist_seeds", len(constraints.ArtistSeeds),
	)

	candidates := e.acquire(ctx, constraints, progress)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: all acquisition tiers exhausted", shared.ErrNoCandidates)
	}
	logger.Info("candidates acquired", "count", len(candidates))

	e.sendProgress(progress, verifyUpdate(len(candidates)))
	verified, err := e.verifyMetadata(ctx, candidates, constraints.Policy)
	if err != nil {
		return nil, err
	}
	if len(verified) == 0 {
		return nil, fmt.Errorf("%w: no candidates survived content filtering", shared.ErrNoCandidates)
	}

	var assembled []catalog.Candidate
	if len(req.Segments) > 0 {
		assembled, err = AssembleSegments(verified, req.Segments)
		if err != nil {
			return nil, err
		}
		assembled = Dedupe(assembled)
	} else {
		assembled = rank(verified, constraints.EraWeights)
		if len(assembled) > constraints.TargetCount {
			assembled = assembled[:constraints.TargetCount]
		}
	}

	if len(assembled) == 0 {
		return nil, fmt.Errorf("%w: assembly produced no tracks", shared.ErrNoCandidates)
	}
	e.sendProgress(progress, assembleUpdate(len(assembled)))

	uris := make([]string, len(assembled))
	for i, c := range assembled {
		uris[i] = c.URI
	}

	result := &BuildResult{
		RequestID:   req.RequestID,
		Name:        playlistName(req),
		Tracks:      assembled,
		URIs:        uris,
		Constraints: *constraints,
	}

	if req.DryRun {
		logger.Info("dry run, skipping playlist creation", "tracks", len(assembled))
		return result, nil
	}

	if err := e.materialize(ctx, req, result, progress); err != nil {
		return nil, err
	}

	logger.Info("build complete", "playlist", result.Playlist.ID, "url", result.URL, "tracks", len(assembled))
	return result, nil
}

// prepare resolves the request into read-only selection constraints.
func (e *Engine) prepare(ctx context.Context, req BuildRequest, progress chan<- ProgressUpdate) (*Constraints, error) {
	policy, err := ParsePolicy(req.ContentPolicy)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, resolveUpdate(req.Genre, req.Mood))

	c := &Constraints{
		TargetCount:      targetTrackCount(req.DurationMinutes),
		TargetDurationMS: req.DurationMinutes * 60 * 1000,
		Policy:           policy,
		Features:         e.vocab.NormalizeMood(req.Mood),
		Keywords:         req.Keywords,
		Mood:             strings.ToLower(strings.TrimSpace(req.Mood)),
		EraWeights:       era.InferEraWeights(req.Artists, req.BirthYear),
	}

	if genre, ok := e.vocab.NormalizeGenre(req.Genre); ok {
		c.GenreSeed = genre
	}

	// Resolve up to 3 artist seeds; unresolvable artists are skipped, not
	// fatal, so the remaining tiers still run.
	for _, name := range req.Artists {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c.ArtistNames = append(c.ArtistNames, name)

		if len(c.ArtistSeeds) >= maxArtistSeeds {
			continue
		}
		artist, err := e.catalog.SearchArtist(ctx, name)
		if err != nil {
			if errors.Is(err, shared.ErrAuthFailed) {
				return nil, err
			}
			e.logger.Warn("could not resolve seed artist", "artist", name, "err", err)
			continue
		}
		c.ArtistSeeds = append(c.ArtistSeeds, artist.ID)
	}

	return c, nil
}

// rank orders candidates by the era-biased popularity score.
func rank(candidates []catalog.Candidate, weights map[string]float64) []catalog.Candidate {
	out := make([]catalog.Candidate, len(candidates))
	copy(out, candidates)

	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i], weights) > score(out[j], weights)
	})
	return out
}

func score(c catalog.Candidate, weights map[string]float64) float64 {
	return popularityWeight*float64(c.Popularity)/100 + eraWeight*era.Weight(weights, c.ReleaseYear)
}

// materialize creates the destination playlist and inserts the track list.
func (e *Engine) materialize(ctx context.Context, req BuildRequest, result *BuildResult, progress chan<- ProgressUpdate) error {
	e.sendProgress(progress, createUpdate(result.Name))

	user, err := e.catalog.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve current user: %w", err)
	}

	description := fmt.Sprintf("Built by mixtape on %s", time.Now().Format("2006-01-02"))
	if req.Event != "" {
		description = fmt.Sprintf("%s for %s", description, req.Event)
	}

	playlist, err := e.catalog.CreatePlaylist(ctx, user.ID, result.Name, description, req.Public)
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	if err := e.catalog.AddTracks(ctx, playlist.ID, result.URIs); err != nil {
		return fmt.Errorf("failed to add tracks: %w", err)
	}

	result.Playlist = playlist
	result.URL = playlist.URL()
	e.sendProgress(progress, createdUpdate(result.Name, result.URL))
	return nil
}

// playlistName derives a display name from the request.
func playlistName(req BuildRequest) string {
	if req.Name != "" {
		return req.Name
	}
	if req.Event != "" {
		return fmt.Sprintf("%s Mix", req.Event)
	}

	parts := []string{}
	if req.Mood != "" {
		parts = append(parts, titleCase(req.Mood))
	}
	if req.Genre != "" {
		parts = append(parts, titleCase(req.Genre))
	}
	if len(parts) == 0 {
		return "Mixtape"
	}
	return strings.Join(parts, " ") + " Mix"
}

func titleCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
