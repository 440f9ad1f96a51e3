package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mixtape-cli/mixtape/internal/catalog"
	"github.com/mixtape-cli/mixtape/internal/shared"
	"github.com/mixtape-cli/mixtape/internal/vocab"
	"github.com/urfave/cli/v3"
)

// CatalogSearch searches the catalog for tracks matching a query.
func (r *Runner) CatalogSearch(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}
	limit := cmd.Int("limit")

	r.logger.Info("searching catalog", "query", query, "limit", limit)

	tracks, err := r.catalog.SearchTracks(ctx, query, limit)
	if err != nil {
		return err
	}

	candidates := catalog.Candidates(tracks)
	if cmd.Bool("json") {
		return r.writeJSON(candidates, cmd.Bool("pretty"))
	}

	if len(candidates) == 0 {
		return r.writePlain("No tracks found for %q\n", query)
	}
	for i, track := range candidates {
		r.writePlain("%3d. %s - %s [%s] (popularity %d)\n",
			i+1, track.Artist, track.Title, shared.FormatDuration(track.DurationMS), track.Popularity)
	}
	return nil
}

// CatalogArtist looks up an artist and prints their top tracks.
func (r *Runner) CatalogArtist(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: artist name is required", shared.ErrMissingArgument)
	}

	artist, err := r.catalog.SearchArtist(ctx, name)
	if err != nil {
		return err
	}

	topTracks, err := r.catalog.ArtistTopTracks(ctx, artist.ID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"artist":     artist,
			"top_tracks": catalog.Candidates(topTracks),
		}, cmd.Bool("pretty"))
	}

	r.writePlain("%s (id: %s)\n", artist.Name, artist.ID)
	if len(artist.Genres) > 0 {
		r.writePlain("Genres: %s\n", strings.Join(artist.Genres, ", "))
	}
	r.writePlain("\nTop tracks:\n")
	for i, track := range catalog.Candidates(topTracks) {
		r.writePlain("%3d. %s [%s]\n", i+1, track.Title, shared.FormatDuration(track.DurationMS))
	}
	return nil
}

// CatalogRecommend fetches raw recommendations for genre/artist seeds,
// optionally tuned by a mood's feature targets.
func (r *Runner) CatalogRecommend(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	v := vocab.NewVocabulary(r.logger)

	var seeds catalog.Seeds
	if genre, ok := v.NormalizeGenre(cmd.String("genre")); ok {
		seeds.Genres = append(seeds.Genres, genre)
	}
	for _, name := range cmd.StringSlice("artist") {
		artist, err := r.catalog.SearchArtist(ctx, name)
		if err != nil {
			return err
		}
		seeds.Artists = append(seeds.Artists, artist.ID)
	}
	if seeds.Count() == 0 {
		return fmt.Errorf("%w: at least one genre or artist seed is required", shared.ErrMissingArgument)
	}

	tunables := v.NormalizeMood(cmd.String("mood"))

	tracks, err := r.catalog.Recommendations(ctx, seeds, tunables, cmd.Int("limit"))
	if err != nil {
		return err
	}

	candidates := catalog.Candidates(tracks)
	if cmd.Bool("json") {
		return r.writeJSON(candidates, cmd.Bool("pretty"))
	}

	if len(candidates) == 0 {
		return r.writePlain("No recommendations for the given seeds\n")
	}
	for i, track := range candidates {
		r.writePlain("%3d. %s - %s [%s] (popularity %d)\n",
			i+1, track.Artist, track.Title, shared.FormatDuration(track.DurationMS), track.Popularity)
	}
	return nil
}

// CatalogFeatures fetches audio features for a comma-separated ID list.
func (r *Runner) CatalogFeatures(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	raw := cmd.StringArg("ids")
	if raw == "" {
		return fmt.Errorf("%w: track IDs are required", shared.ErrMissingArgument)
	}

	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	features, err := r.catalog.AudioFeatures(ctx, ids)
	if err != nil {
		return err
	}

	return r.writeJSON(features, cmd.Bool("pretty"))
}
