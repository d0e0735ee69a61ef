// Package history implements the reconciliation of completed analyses
// into a bounded, deduplicated, newest-first history log. The reconciler
// is pure: it returns the new log and leaves persistence to the caller,
// which must serialize read-modify-write cycles over a shared log.
package history

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

// Default policy values. The two windows correspond to two distinct
// call paths in the host: folding a detailed analysis into a
// just-created lightweight entry (short), and suppressing duplicate new
// entries from repeated scans of the same product (long).
const (
	DefaultMergeWindow     = 10 * time.Minute
	DefaultDuplicateWindow = 60 * time.Minute
	DefaultMaxEntries      = 100
)

// Options configures the dedup windows and the log size bound.
type Options struct {
	MergeWindow     time.Duration
	DuplicateWindow time.Duration
	MaxEntries      int
}

// DefaultOptions returns the standard reconciliation policy.
func DefaultOptions() Options {
	return Options{
		MergeWindow:     DefaultMergeWindow,
		DuplicateWindow: DefaultDuplicateWindow,
		MaxEntries:      DefaultMaxEntries,
	}
}

// Reconciler merges analysis records into a history log under a
// configurable dedup policy.
type Reconciler struct {
	opts Options
}

// NewReconciler creates a reconciler. Zero or negative option values
// fall back to the defaults.
func NewReconciler(opts Options) *Reconciler {
	if opts.MergeWindow <= 0 {
		opts.MergeWindow = DefaultMergeWindow
	}
	if opts.DuplicateWindow <= 0 {
		opts.DuplicateWindow = DefaultDuplicateWindow
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	return &Reconciler{opts: opts}
}

// Reconcile folds an incoming analysis into the log using the long
// duplicate-suppression window. Repeated scans of the same product
// inside the window update the existing entry instead of growing the
// log. Safe to call repeatedly with the same record: the second and
// later applications merge into the entry created by the first.
func (r *Reconciler) Reconcile(log []types.HistoryEntry, incoming types.AnalysisRecord) []types.HistoryEntry {
	return r.apply(log, incoming, r.opts.DuplicateWindow)
}

// MergeAnalysis folds a just-completed detailed analysis into a
// just-created lightweight entry using the short merge window. Outside
// the window it behaves like Reconcile with a miss: a new entry is
// prepended.
func (r *Reconciler) MergeAnalysis(log []types.HistoryEntry, incoming types.AnalysisRecord) []types.HistoryEntry {
	return r.apply(log, incoming, r.opts.MergeWindow)
}

func (r *Reconciler) apply(log []types.HistoryEntry, incoming types.AnalysisRecord, window time.Duration) []types.HistoryEntry {
	out := make([]types.HistoryEntry, len(log))
	copy(out, log)

	if idx := r.findMatch(out, incoming, window); idx >= 0 {
		out[idx] = mergeEntry(out[idx], incoming)
		return truncate(out, r.opts.MaxEntries)
	}

	entry := types.HistoryEntry{
		ID:             uuid.NewString(),
		AnalysisRecord: incoming,
	}
	out = append([]types.HistoryEntry{entry}, out...)
	return truncate(out, r.opts.MaxEntries)
}

// findMatch locates the newest entry with the same product name whose
// timestamp lies within the window of the incoming record.
func (r *Reconciler) findMatch(log []types.HistoryEntry, incoming types.AnalysisRecord, window time.Duration) int {
	name := normalizeName(incoming.ProductName)
	if name == "" {
		return -1
	}
	for i, entry := range log {
		if normalizeName(entry.ProductName) != name {
			continue
		}
		delta := incoming.ScannedAt.Sub(entry.ScannedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= window {
			return i
		}
	}
	return -1
}

// mergeEntry overwrites the analysis fields of an existing entry with
// the incoming record while preserving the entry identity: id, original
// scan timestamp and the favorite flag survive the merge. Last write
// wins on conflicting data.
func mergeEntry(existing types.HistoryEntry, incoming types.AnalysisRecord) types.HistoryEntry {
	originalScannedAt := existing.ScannedAt

	existing.AnalysisRecord = incoming
	existing.ScannedAt = originalScannedAt
	return existing
}

func truncate(log []types.HistoryEntry, max int) []types.HistoryEntry {
	if len(log) > max {
		return log[:max]
	}
	return log
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
