package pipeline

import "fmt"

// ProgressUpdate represents a progress event during a playlist build.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveConstraints Phase = iota
	AcquireCandidates
	VerifyMetadata
	AssemblePlaylist
	CreatePlaylist
	BulkBuild
)

func (p Phase) String() string {
	switch p {
	case ResolveConstraints:
		return "resolve_constraints"
	case AcquireCandidates:
		return "acquire_candidates"
	case VerifyMetadata:
		return "verify_metadata"
	case AssemblePlaylist:
		return "assemble_playlist"
	case CreatePlaylist:
		return "create_playlist"
	case BulkBuild:
		return "bulk_build"
	default:
		return ""
	}
}

func resolveUpdate(genre, mood string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveConstraints,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving vocabulary (genre: %s, mood: %s)...", orNone(genre), orNone(mood)),
	}
}

func tierUpdate(step, total int, tier string, have, want int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AcquireCandidates,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s tier: %d/%d candidates", step, total, tier, have, want),
	}
}

func verifyUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   VerifyMetadata,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Verifying metadata for %d candidates...", count),
	}
}

func assembleUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssemblePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Assembled %d tracks", count),
		Data:    count,
	}
}

func createUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func createdUpdate(name, url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (%s)", name, url),
	}
}

func bulkUpdate(step, total int, name string, err error) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ %s", step, total, name)
	if err != nil {
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err)
	}
	return ProgressUpdate{
		Phase:   BulkBuild,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
