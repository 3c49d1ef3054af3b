package model

import (
	"sync/atomic"
	"time"
)

// Stage identifies a pipeline stage for failure attribution.
type Stage string

// Pipeline stages in stream order.
const (
	StageSource     Stage = "source"
	StageDecompress Stage = "decompress"
	StageSegment    Stage = "segment"
	StageParse      Stage = "parse"
	StageExtract    Stage = "extract"
	StageSink       Stage = "sink"
)

// Outcome is the terminal result of a run.
type Outcome string

// Run outcomes.
const (
	OutcomeRunning   Outcome = "running"
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// RunState tracks run-level progress: pages processed, bytes consumed, and
// the terminal outcome. It is the only type in this package touched by more
// than one goroutine, so its counters are atomic and its terminal fields are
// written exactly once, by the orchestrator, after all stages have stopped.
type RunState struct {
	started time.Time

	pagesEmitted  atomic.Int64
	pagesWritten  atomic.Int64
	pagesSkipped  atomic.Int64
	pagesDegraded atomic.Int64
	redirects     atomic.Int64
	bytesRead     atomic.Int64
	bytesDecoded  atomic.Int64

	// Terminal fields, set once by Finish.
	outcome     Outcome
	failedStage Stage
	finished    time.Time
	unverified  bool
}

// NewRunState returns a RunState with the clock started.
func NewRunState() *RunState {
	return &RunState{started: time.Now(), outcome: OutcomeRunning}
}

// PageEmitted records a page handed off by the segmenter.
func (s *RunState) PageEmitted() { s.pagesEmitted.Add(1) }

// PageWritten records a page fully routed to its sinks.
func (s *RunState) PageWritten() { s.pagesWritten.Add(1) }

// PageSkipped records a page dropped by a segmentation error or an
// unsupported content model.
func (s *RunState) PageSkipped() { s.pagesSkipped.Add(1) }

// AddPagesSkipped records pages dropped in bulk, as reported per archive by
// the segmenter.
func (s *RunState) AddPagesSkipped(n int64) { s.pagesSkipped.Add(n) }

// PageDegraded records a page that fell back to its raw text after a markup
// parse failure.
func (s *RunState) PageDegraded() { s.pagesDegraded.Add(1) }

// RedirectFound records one extracted redirect edge.
func (s *RunState) RedirectFound() { s.redirects.Add(1) }

// AddBytesRead records compressed bytes delivered by the byte source.
func (s *RunState) AddBytesRead(n int64) { s.bytesRead.Add(n) }

// AddBytesDecoded records decompressed bytes handed to the segmenter.
func (s *RunState) AddBytesDecoded(n int64) { s.bytesDecoded.Add(n) }

// MarkUnverified flags the run as having failed its integrity check.
// The flag does not stop the run; already-written output stays valid.
func (s *RunState) MarkUnverified() { s.unverified = true }

// Finish records the terminal outcome. stage is the failing stage for
// OutcomeFailed and ignored otherwise. Finish must be called exactly once,
// after every stage goroutine has returned.
func (s *RunState) Finish(outcome Outcome, stage Stage) {
	s.outcome = outcome
	s.failedStage = stage
	s.finished = time.Now()
}

// Snapshot is a point-in-time copy of the run counters.
type Snapshot struct {
	Started       time.Time
	Finished      time.Time
	Outcome       Outcome
	FailedStage   Stage
	PagesEmitted  int64
	PagesWritten  int64
	PagesSkipped  int64
	PagesDegraded int64
	Redirects     int64
	BytesRead     int64
	BytesDecoded  int64
	Unverified    bool
}

// Snapshot returns a copy of the counters. Safe to call while stages are
// still running; terminal fields are meaningful only after Finish.
func (s *RunState) Snapshot() Snapshot {
	return Snapshot{
		Started:       s.started,
		Finished:      s.finished,
		Outcome:       s.outcome,
		FailedStage:   s.failedStage,
		PagesEmitted:  s.pagesEmitted.Load(),
		PagesWritten:  s.pagesWritten.Load(),
		PagesSkipped:  s.pagesSkipped.Load(),
		PagesDegraded: s.pagesDegraded.Load(),
		Redirects:     s.redirects.Load(),
		BytesRead:     s.bytesRead.Load(),
		BytesDecoded:  s.bytesDecoded.Load(),
		Unverified:    s.unverified,
	}
}

// Elapsed returns the wall-clock duration of the run so far, or the final
// duration once Finish has been called.
func (s *RunState) Elapsed() time.Duration {
	if !s.finished.IsZero() {
		return s.finished.Sub(s.started)
	}
	return time.Since(s.started)
}
