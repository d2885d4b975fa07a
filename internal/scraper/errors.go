package scraper

import (
	"strings"

	"github.com/pkg/errors"
)

// Error taxonomy for upstream interaction. Callers branch with errors.Is
// so every failure mode below is a sentinel (or wraps one).
var (
	// ErrNotFound means every probed URL shape returned 404.
	ErrNotFound = errors.New("content not found upstream")

	// ErrAccessDenied means the upstream answered 403. The message keeps
	// the literal "403" so string-matching callers can branch on it.
	ErrAccessDenied = errors.New("upstream denied access (HTTP 403)")

	// ErrUpstreamTimeout means a fetch exceeded its deadline.
	ErrUpstreamTimeout = errors.New("upstream request timed out")

	// ErrNoSources means the episode page parsed fine but yielded no
	// playable sources.
	ErrNoSources = errors.New("no streaming sources found")
)

// RaceError aggregates the per-candidate failures of an embed race where
// no candidate produced a usable URL.
type RaceError struct {
	Errs []error
}

func (e *RaceError) Error() string {
	if len(e.Errs) == 0 {
		return "no working source"
	}
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return "no working source: " + strings.Join(msgs, "; ")
}
