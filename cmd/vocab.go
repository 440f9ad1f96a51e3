package main

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/mixtape-cli/mixtape/internal/vocab"
	"github.com/urfave/cli/v3"
)

// VocabGenres lists the canonical genres the normalizer resolves to.
func (r *Runner) VocabGenres(ctx context.Context, cmd *cli.Command) error {
	genres := vocab.Genres()
	sort.Strings(genres)

	if cmd.Bool("json") {
		return r.writeJSON(genres, true)
	}

	for _, genre := range genres {
		r.writePlain("%s\n", genre)
	}
	return nil
}

// VocabMoods lists moods with their audio feature targets.
func (r *Runner) VocabMoods(ctx context.Context, cmd *cli.Command) error {
	v := vocab.NewVocabulary(r.logger)

	moods := vocab.Moods()
	sort.Strings(moods)

	if cmd.Bool("json") {
		vectors := make(map[string]vocab.FeatureTargets, len(moods))
		for _, mood := range moods {
			vectors[mood] = v.NormalizeMood(mood)
		}
		return r.writeJSON(vectors, true)
	}

	for _, mood := range moods {
		r.writePlain("%-12s %s\n", mood, formatTargets(v.NormalizeMood(mood)))
	}
	return nil
}

// formatTargets renders a feature vector as sorted key=value pairs.
func formatTargets(targets vocab.FeatureTargets) string {
	keys := make([]string, 0, len(targets))
	for k := range targets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+strconv.FormatFloat(targets[k], 'g', -1, 64))
	}
	return strings.Join(pairs, " ")
}
