package pipeline

import (
	"context"

	"github.com/mixtape-cli/mixtape/internal/catalog"
)

// FilterCandidates removes candidates violating the content policy,
// preserving order. Policy "any" is a no-op.
func FilterCandidates(candidates []catalog.Candidate, policy ContentPolicy) []catalog.Candidate {
	if policy == PolicyAny || policy == "" {
		return candidates
	}

	out := make([]catalog.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if policy.Allows(c.Explicit) {
			out = append(out, c)
		}
	}
	return out
}

// Dedupe removes duplicate URIs, first-seen-wins, preserving the order
// established by the tier sequence.
func Dedupe(candidates []catalog.Candidate) []catalog.Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]catalog.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.URI == "" || seen[c.URI] {
			continue
		}
		seen[c.URI] = true
		out = append(out, c)
	}
	return out
}

// accumulator gathers candidates across tiers with inline policy filtering
// and URI deduplication.
type accumulator struct {
	policy ContentPolicy
	seen   map[string]bool
	items  []catalog.Candidate
}

func newAccumulator(policy ContentPolicy) *accumulator {
	return &accumulator{
		policy: policy,
		seen:   make(map[string]bool),
	}
}

// add appends candidates that pass the policy and are not yet present.
func (a *accumulator) add(candidates []catalog.Candidate) {
	for _, c := range candidates {
		if c.URI == "" || a.seen[c.URI] {
			continue
		}
		if !a.policy.Allows(c.Explicit) {
			continue
		}
		a.seen[c.URI] = true
		a.items = append(a.items, c)
	}
}

func (a *accumulator) len() int { return len(a.items) }

// verifyMetadata is the authoritative filter pass before assembly: search
// result explicit flags are occasionally stale or absent, so candidates are
// re-fetched through the batch metadata endpoint, re-defaulted, re-filtered
// against the policy, and enriched with audio features.
//
// Batch failures degrade gracefully: candidates missing from the
// authoritative response keep their tier-provided metadata.
func (e *Engine) verifyMetadata(ctx context.Context, candidates []catalog.Candidate, policy ContentPolicy) ([]catalog.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.ID != "" {
			ids = append(ids, c.ID)
		}
	}

	tracks, err := e.catalog.SeveralTracks(ctx, ids)
	if err != nil {
		return nil, err
	}

	authoritative := make(map[string]catalog.Candidate, len(tracks))
	for _, t := range tracks {
		c := t.Candidate()
		authoritative[c.ID] = c
	}

	verified := make([]catalog.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if auth, ok := authoritative[c.ID]; ok {
			c = auth
		}
		verified = append(verified, c)
	}

	verified = FilterCandidates(verified, policy)
	verified = Dedupe(verified)

	features, err := e.catalog.AudioFeatures(ctx, ids)
	if err != nil {
		return nil, err
	}
	catalog.MergeFeatures(verified, features)

	return verified, nil
}
