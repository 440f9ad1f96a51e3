package main

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mixtape-cli/mixtape/internal/formatter"
	"github.com/mixtape-cli/mixtape/internal/models"
	"github.com/mixtape-cli/mixtape/internal/pipeline"
	"github.com/mixtape-cli/mixtape/internal/repositories"
	"github.com/mixtape-cli/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// Build assembles one playlist from command-line constraints.
func (r *Runner) Build(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	req, err := r.buildRequest(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("starting build", "genre", req.Genre, "mood", req.Mood, "duration", req.DurationMinutes)

	progressCh := make(chan pipeline.ProgressUpdate, 50)
	done := r.printProgress(progressCh)

	result, err := r.engine.Build(ctx, req, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	title := "Playlist Created!"
	if req.DryRun {
		title = "Dry Run Complete"
	}
	r.writePlain("\n")
	r.writePlainHeader(title)
	r.writePlain("Name: %s\n", result.Name)
	r.writePlain("Tracks: %d\n", len(result.Tracks))
	r.writePlain("Duration: %s\n", shared.FormatDuration(result.TotalDurationMS()))
	if result.URL != "" {
		r.writePlain("URL: %s\n", result.URL)
	}
	r.writePlain("\n")
	for i, track := range result.Tracks {
		r.writePlain("%3d. %s - %s [%s]\n", i+1, track.Artist, track.Title, shared.FormatDuration(track.DurationMS))
	}

	if format := cmd.String("export"); format != "" {
		base := cmd.String("output")
		if base == "" {
			base = result.RequestID
		}
		files, err := formatter.WriteExport(result, format, base)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		for _, f := range files.Files {
			r.writePlain("Exported: %s\n", f)
		}
	}

	if !req.DryRun && !cmd.Bool("no-save") {
		r.recordBuild(req, result)
	}

	return nil
}

// Bulk runs multiple builds from a TOML request file.
func (r *Runner) Bulk(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	requests, err := loadBulkRequests(cmd.String("file"), r.config.Builder)
	if err != nil {
		return err
	}
	if cmd.Bool("dry-run") {
		for i := range requests {
			requests[i].DryRun = true
		}
	}

	r.writePlain("Building %d playlists...\n\n", len(requests))

	progressCh := make(chan pipeline.ProgressUpdate, 50)
	done := r.printProgress(progressCh)

	opts := pipeline.BulkOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}
	result, err := r.engine.BuildAll(ctx, requests, opts, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	r.writePlainHeader("Bulk Build Complete")
	r.writePlain("Requested: %d\n", result.TotalRequests)
	r.writePlain("Succeeded: %d\n", result.SuccessfulBuilds)
	r.writePlain("Failed: %d\n", result.FailedBuilds)

	for _, outcome := range result.Outcomes {
		if !outcome.Success {
			r.writePlain("  ✗ %s: %v\n", outcome.Name, outcome.Error)
		}
	}

	return nil
}

// buildRequest assembles a BuildRequest from flags, falling back to
// configured builder defaults for duration and content policy.
func (r *Runner) buildRequest(cmd *cli.Command) (pipeline.BuildRequest, error) {
	req := pipeline.BuildRequest{
		Event:           cmd.String("event"),
		Genre:           cmd.String("genre"),
		Mood:            cmd.String("mood"),
		Keywords:        cmd.StringSlice("keyword"),
		Artists:         cmd.StringSlice("artist"),
		DurationMinutes: cmd.Int("duration"),
		ContentPolicy:   cmd.String("policy"),
		BirthYear:       cmd.Int("birth-year"),
		Name:            cmd.String("name"),
		Public:          cmd.Bool("public"),
		DryRun:          cmd.Bool("dry-run"),
	}

	if req.DurationMinutes <= 0 {
		req.DurationMinutes = r.config.Builder.DurationMinutes
	}
	if req.ContentPolicy == "" {
		req.ContentPolicy = r.config.Builder.ContentPolicy
	}

	if spec := cmd.String("segments"); spec != "" {
		segments, err := pipeline.ParseSegments(spec)
		if err != nil {
			return req, err
		}
		req.Segments = segments
	} else if cmd.Bool("workout") {
		req.Segments = pipeline.WorkoutSegments(req.DurationMinutes)
	}

	return req, nil
}

// printProgress drains build progress updates onto the output writer. The
// returned channel closes once the progress channel is fully drained, so
// callers can sequence summary output after the last update.
func (r *Runner) printProgress(progressCh <-chan pipeline.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case pipeline.ResolveConstraints:
				r.writePlain("🔎 %s\n", update.Message)
			case pipeline.AcquireCandidates:
				r.writePlain("📥 %s\n", update.Message)
			case pipeline.VerifyMetadata:
				r.writePlain("🧹 %s\n", update.Message)
			case pipeline.AssemblePlaylist:
				r.writePlain("🎚  %s\n", update.Message)
			case pipeline.CreatePlaylist:
				r.writePlain("📝 %s\n", update.Message)
			case pipeline.BulkBuild:
				r.writePlain("%s\n", update.Message)
			}
		}
	}()
	return done
}

// recordBuild persists a completed build to the history store. Failures are
// logged, never fatal; a missing database just means setup has not run.
func (r *Runner) recordBuild(req pipeline.BuildRequest, result *pipeline.BuildResult) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		r.logger.Warn("history store unavailable", "error", err)
		return
	}
	defer db.Close()

	record := models.BuildRecord{
		RequestID:       result.RequestID,
		Event:           req.Event,
		Genre:           req.Genre,
		Mood:            req.Mood,
		Artists:         req.Artists,
		ContentPolicy:   req.ContentPolicy,
		DurationMinutes: req.DurationMinutes,
		TrackCount:      len(result.Tracks),
		PlaylistURL:     result.URL,
	}
	if result.Playlist != nil {
		record.PlaylistID = result.Playlist.ID
	}

	build := models.NewPersistedBuild(0, record)
	if err := repositories.NewBuildRepository(db).Create(build); err != nil {
		r.logger.Warn("failed to record build (run 'mixtape setup' to initialize history)", "error", err)
		return
	}
	r.logger.Info("build recorded", "id", build.ID(), "sequence", build.Sequence())
}

// bulkSpec is the on-disk shape of one bulk build request.
type bulkSpec struct {
	Event           string   `toml:"event"`
	Genre           string   `toml:"genre"`
	Mood            string   `toml:"mood"`
	Keywords        []string `toml:"keywords"`
	Artists         []string `toml:"artists"`
	DurationMinutes int      `toml:"duration_minutes"`
	ContentPolicy   string   `toml:"content_policy"`
	BirthYear       int      `toml:"birth_year"`
	Segments        string   `toml:"segments"`
	Name            string   `toml:"name"`
	Public          bool     `toml:"public"`
}

// bulkFile is a TOML request file: one [[builds]] table per playlist.
type bulkFile struct {
	Builds []bulkSpec `toml:"builds"`
}

// loadBulkRequests reads a TOML request file, applying builder defaults for
// duration and content policy where the file leaves them unset.
func loadBulkRequests(path string, defaults shared.BuilderConfig) ([]pipeline.BuildRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	var file bulkFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse request file: %w", err)
	}
	if len(file.Builds) == 0 {
		return nil, fmt.Errorf("%w: request file contains no builds", shared.ErrInvalidInput)
	}

	requests := make([]pipeline.BuildRequest, 0, len(file.Builds))
	for i, spec := range file.Builds {
		req := pipeline.BuildRequest{
			Event:           spec.Event,
			Genre:           spec.Genre,
			Mood:            spec.Mood,
			Keywords:        spec.Keywords,
			Artists:         spec.Artists,
			DurationMinutes: spec.DurationMinutes,
			ContentPolicy:   spec.ContentPolicy,
			BirthYear:       spec.BirthYear,
			Name:            spec.Name,
			Public:          spec.Public,
		}
		if req.DurationMinutes <= 0 {
			req.DurationMinutes = defaults.DurationMinutes
		}
		if req.ContentPolicy == "" {
			req.ContentPolicy = defaults.ContentPolicy
		}
		if spec.Segments != "" {
			segments, err := pipeline.ParseSegments(spec.Segments)
			if err != nil {
				return nil, fmt.Errorf("request %d: %w", i+1, err)
			}
			req.Segments = segments
		}
		requests = append(requests, req)
	}

	return requests, nil
}
