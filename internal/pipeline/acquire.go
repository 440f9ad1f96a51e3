package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mixtape-cli/mixtape/internal/catalog"
)

// tierSufficiency is the fraction of the target count a tier must deliver
// before the pipeline stops falling through.
const tierSufficiency = 0.7

// maxSearchVariants caps textual query variants per search round.
const maxSearchVariants = 4

// sufficient reports whether have covers at least 70% of want.
func sufficient(have, want int) bool {
	return float64(have) >= tierSufficiency*float64(want)
}

// acquire runs the tiered acquisition strategy: recommendation seeds, then
// text-search variants, then artist top tracks. Each tier deduplicates
// against the accumulated set and applies the content policy inline; tier
// failures fall through rather than failing the build.
func (e *Engine) acquire(ctx context.Context, c *Constraints, progress chan<- ProgressUpdate) []catalog.Candidate {
	acc := newAccumulator(c.Policy)

	seeds := buildSeeds(c)
	if seeds.Count() > 0 {
		tracks, err := e.catalog.Recommendations(ctx, seeds, c.Features, c.TargetCount)
		if err != nil {
			e.logger.Warn("recommendation tier failed", "err", err)
		}
		acc.add(catalog.Candidates(tracks))
	}
	e.sendProgress(progress, tierUpdate(1, 3, "recommendation", acc.len(), c.TargetCount))
	if sufficient(acc.len(), c.TargetCount) {
		return acc.items
	}

	e.searchTier(ctx, c, acc)
	e.sendProgress(progress, tierUpdate(2, 3, "text-search", acc.len(), c.TargetCount))
	if sufficient(acc.len(), c.TargetCount) {
		return acc.items
	}

	e.artistTopTier(ctx, c, acc)
	e.sendProgress(progress, tierUpdate(3, 3, "artist-top-tracks", acc.len(), c.TargetCount))

	return acc.items
}

// buildSeeds apportions the 5-seed recommendation budget genre-first, then
// artists. Track seeds would come last but build requests carry none.
func buildSeeds(c *Constraints) catalog.Seeds {
	var seeds catalog.Seeds

	if c.GenreSeed != "" {
		seeds.Genres = []string{c.GenreSeed}
	}

	budget := 5 - seeds.Count()
	for _, id := range c.ArtistSeeds {
		if budget == 0 {
			break
		}
		seeds.Artists = append(seeds.Artists, id)
		budget--
	}

	return seeds
}

// searchTier issues up to four textual query variants, accumulates hits
// with inline policy filtering, sorts the tier's accumulation by descending
// popularity, and truncates to the target before merging.
func (e *Engine) searchTier(ctx context.Context, c *Constraints, acc *accumulator) {
	tier := newAccumulator(c.Policy)

	for _, query := range searchQueries(c) {
		if tier.len() >= c.TargetCount {
			break
		}

		tracks, err := e.catalog.SearchTracks(ctx, query, c.TargetCount)
		if err != nil {
			e.logger.Warn("search variant failed", "query", query, "err", err)
			continue
		}
		e.logger.Debug("search variant", "query", query, "hits", len(tracks))
		tier.add(catalog.Candidates(tracks))
	}

	items := tier.items
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Popularity > items[j].Popularity
	})
	if len(items) > c.TargetCount {
		items = items[:c.TargetCount]
	}

	acc.add(items)
}

// searchQueries constructs the fallback query variants: quoted genre
// filter, mood keyword combinations, freeform keyword combinations, or a
// generic popular query when no other signal exists.
func searchQueries(c *Constraints) []string {
	var queries []string

	if c.GenreSeed != "" {
		queries = append(queries, fmt.Sprintf("genre:%q", c.GenreSeed))
	}
	if c.Mood != "" {
		if c.GenreSeed != "" {
			queries = append(queries, fmt.Sprintf("%s %s music", c.Mood, c.GenreSeed))
		} else {
			queries = append(queries, fmt.Sprintf("%s music", c.Mood))
		}
	}
	if len(c.Keywords) > 0 {
		queries = append(queries, strings.Join(c.Keywords, " "))
		if c.Mood != "" {
			queries = append(queries, fmt.Sprintf("%s %s", strings.Join(c.Keywords, " "), c.Mood))
		}
	}
	if len(queries) == 0 {
		queries = append(queries, "popular trending hits")
	}

	if len(queries) > maxSearchVariants {
		queries = queries[:maxSearchVariants]
	}
	return queries
}

// artistTopTier tops up the accumulated set from seed artists' most popular
// tracks. Artists that fail to resolve are skipped.
func (e *Engine) artistTopTier(ctx context.Context, c *Constraints, acc *accumulator) {
	if len(c.ArtistNames) == 0 {
		return
	}

	ids := c.ArtistSeeds
	if len(ids) == 0 {
		for _, name := range c.ArtistNames {
			artist, err := e.catalog.SearchArtist(ctx, name)
			if err != nil {
				e.logger.Warn("artist resolution failed", "artist", name, "err", err)
				continue
			}
			ids = append(ids, artist.ID)
		}
	}

	for _, id := range ids {
		if acc.len() >= c.TargetCount {
			return
		}

		tracks, err := e.catalog.ArtistTopTracks(ctx, id)
		if err != nil {
			e.logger.Warn("artist top tracks failed", "artist_id", id, "err", err)
			continue
		}
		acc.add(catalog.Candidates(tracks))
	}
}
