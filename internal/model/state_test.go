package model

import (
	"sync"
	"testing"
)

// TestRunStateCounters tests that counters accumulate under concurrent use.
func TestRunStateCounters(t *testing.T) {
	t.Parallel()

	s := NewRunState()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.PageEmitted()
				s.PageWritten()
				s.AddBytesRead(10)
				s.AddBytesDecoded(25)
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.PagesEmitted != 800 {
		t.Errorf("expected 800 pages emitted, got %d", snap.PagesEmitted)
	}
	if snap.PagesWritten != 800 {
		t.Errorf("expected 800 pages written, got %d", snap.PagesWritten)
	}
	if snap.BytesRead != 8000 {
		t.Errorf("expected 8000 bytes read, got %d", snap.BytesRead)
	}
	if snap.BytesDecoded != 20000 {
		t.Errorf("expected 20000 bytes decoded, got %d", snap.BytesDecoded)
	}
}

// TestRunStateFinish tests terminal outcome recording.
func TestRunStateFinish(t *testing.T) {
	t.Parallel()

	t.Run("completed run", func(t *testing.T) {
		t.Parallel()

		s := NewRunState()
		s.Finish(OutcomeCompleted, "")

		snap := s.Snapshot()
		if snap.Outcome != OutcomeCompleted {
			t.Errorf("expected outcome %q, got %q", OutcomeCompleted, snap.Outcome)
		}
		if snap.Finished.IsZero() {
			t.Error("expected finished time to be set")
		}
	})

	t.Run("failed run names the stage", func(t *testing.T) {
		t.Parallel()

		s := NewRunState()
		s.Finish(OutcomeFailed, StageDecompress)

		snap := s.Snapshot()
		if snap.Outcome != OutcomeFailed {
			t.Errorf("expected outcome %q, got %q", OutcomeFailed, snap.Outcome)
		}
		if snap.FailedStage != StageDecompress {
			t.Errorf("expected failed stage %q, got %q", StageDecompress, snap.FailedStage)
		}
	})

	t.Run("unverified flag survives snapshot", func(t *testing.T) {
		t.Parallel()

		s := NewRunState()
		s.MarkUnverified()
		s.Finish(OutcomeCompleted, "")

		if !s.Snapshot().Unverified {
			t.Error("expected snapshot to carry unverified flag")
		}
	})
}

// TestPageRecordHasWikitext tests content model guards.
func TestPageRecordHasWikitext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		model  string
		format string
		want   bool
	}{
		{"explicit wikitext", "wikitext", "text/x-wiki", true},
		{"missing model and format", "", "", true},
		{"scribunto module", "Scribunto", "text/plain", false},
		{"json content model", "json", "application/json", false},
		{"wikitext model with odd format", "wikitext", "text/plain", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &PageRecord{Model: tt.model, Format: tt.format}
			if got := p.HasWikitext(); got != tt.want {
				t.Errorf("HasWikitext() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPageRecordIsArticle tests the article predicate.
func TestPageRecordIsArticle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page PageRecord
		want bool
	}{
		{"main namespace article", PageRecord{Namespace: 0}, true},
		{"talk namespace", PageRecord{Namespace: 1}, false},
		{"redirect in main namespace", PageRecord{Namespace: 0, Redirect: true}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.page.IsArticle(); got != tt.want {
				t.Errorf("IsArticle() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestSiteInfoNamespaceName tests nil-safe namespace lookup.
func TestSiteInfoNamespaceName(t *testing.T) {
	t.Parallel()

	var nilInfo *SiteInfo
	if got := nilInfo.NamespaceName(0); got != "" {
		t.Errorf("nil SiteInfo should return empty name, got %q", got)
	}

	info := &SiteInfo{Namespaces: map[int]string{0: "", 1: "Talk", 14: "Category"}}
	if got := info.NamespaceName(14); got != "Category" {
		t.Errorf("expected Category, got %q", got)
	}
	if got := info.NamespaceName(99); got != "" {
		t.Errorf("unknown key should return empty name, got %q", got)
	}
}
