package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Caellian/wiki-extractor/internal/config"
	"github.com/Caellian/wiki-extractor/internal/database"
	"github.com/Caellian/wiki-extractor/internal/decompress"
	"github.com/Caellian/wiki-extractor/internal/extract"
	"github.com/Caellian/wiki-extractor/internal/log"
	"github.com/Caellian/wiki-extractor/internal/mirror"
	"github.com/Caellian/wiki-extractor/internal/model"
	"github.com/Caellian/wiki-extractor/internal/segment"
	"github.com/Caellian/wiki-extractor/internal/sink"
	"github.com/Caellian/wiki-extractor/internal/source"
	"github.com/Caellian/wiki-extractor/internal/wikitext"
)

// stageError attributes a fatal error to the pipeline stage it came from.
type stageError struct {
	stage model.Stage
	err   error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.stage, e.err)
}

func (e *stageError) Unwrap() error {
	return e.err
}

// Pipeline runs one extraction over a resolved dump.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
	mux    *sink.Multiplexer
	db     *database.ArchiveDB
	runID  int64
	client *http.Client

	state     *model.RunState
	extractor *extract.Extractor
	site      atomic.Pointer[model.SiteInfo]
}

// Option sets an option on a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for stage diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithArchiveDB enables recording the run and its page metadata.
func WithArchiveDB(db *database.ArchiveDB, runID int64) Option {
	return func(p *Pipeline) {
		p.db = db
		p.runID = runID
	}
}

// WithHTTPClient sets the HTTP client used for remote dump files.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		p.client = client
	}
}

// New creates a Pipeline writing to the given sinks.
func New(cfg *config.Config, mux *sink.Multiplexer, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		logger:    slog.Default(),
		mux:       mux,
		client:    http.DefaultClient,
		state:     model.NewRunState(),
		extractor: extract.New(cfg.Text),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the live run state.
func (p *Pipeline) State() *model.RunState {
	return p.state
}

// SiteInfo returns the siteinfo header of the first processed archive, or
// nil before one has been decoded.
func (p *Pipeline) SiteInfo() *model.SiteInfo {
	return p.site.Load()
}

// pageResult pairs a record with its extracted content. seq is a dense
// ordering key assigned at dispatch; ordinals have gaps where pages were
// skipped, so they cannot drive reordering directly.
type pageResult struct {
	seq int64
	rec *model.PageRecord
	res extract.Result
}

// Run processes every file of the dump. It blocks until all stages have
// stopped and returns the terminal snapshot. The returned error is nil for
// a completed run; sinks are left open either way and the caller closes
// them, so partial output survives failures.
func (p *Pipeline) Run(ctx context.Context, dump *mirror.Dump) (model.Snapshot, error) {
	group, ctx := errgroup.WithContext(ctx)

	pages := make(chan *model.PageRecord, p.cfg.QueueDepth)
	results := make(chan pageResult, p.cfg.QueueDepth)

	group.Go(func() error {
		defer close(pages)
		return p.produce(ctx, dump, pages)
	})

	group.Go(func() error {
		defer close(results)
		if p.cfg.ParseWorkers > 1 {
			return p.parsePool(ctx, pages, results)
		}
		return p.parseSerial(ctx, pages, results)
	})

	group.Go(func() error {
		return p.consume(ctx, results)
	})

	err := group.Wait()
	p.finish(err)
	return p.state.Snapshot(), err
}

// finish records the terminal outcome on the run state.
func (p *Pipeline) finish(err error) {
	switch {
	case err == nil:
		p.state.Finish(model.OutcomeCompleted, "")
	case errors.Is(err, context.Canceled):
		p.state.Finish(model.OutcomeCancelled, "")
	default:
		var se *stageError
		stage := model.Stage("")
		if errors.As(err, &se) {
			stage = se.stage
		}
		p.state.Finish(model.OutcomeFailed, stage)
	}
}

// produce streams every dump file through decompression and segmentation,
// sending page records downstream.
func (p *Pipeline) produce(ctx context.Context, dump *mirror.Dump, pages chan<- *model.PageRecord) error {
	for _, entry := range dump.Files {
		if err := p.produceFile(ctx, entry, pages); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) produceFile(ctx context.Context, entry mirror.FileEntry, pages chan<- *model.PageRecord) error {
	p.logger.Info("processing dump file", slog.String("name", entry.Name))

	src, err := source.Open(ctx, entry,
		source.WithHTTPClient(p.client),
		source.WithUserAgent(config.DefaultUserAgent),
		source.WithRetryLimit(p.cfg.RetryLimit),
		source.WithReadTimeout(p.cfg.ReadTimeout),
	)
	if err != nil {
		return &stageError{stage: model.StageSource, err: err}
	}
	defer src.Close() //nolint:errcheck // read-only stream

	dec, err := decompress.NewReader(src, decompress.WithChunkSize(p.cfg.ChunkSize))
	if err != nil {
		return &stageError{stage: model.StageDecompress, err: err}
	}

	seg := segment.NewSegmenter(dec,
		segment.WithMaxPageBytes(int(p.cfg.MaxPageBytes)),
		segment.WithLogger(p.logger),
	)

	for {
		rec, err := seg.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var corrupt *decompress.CorruptError
			if errors.As(err, &corrupt) {
				return &stageError{stage: model.StageDecompress, err: err}
			}
			return &stageError{stage: model.StageSegment, err: err}
		}

		if p.site.Load() == nil && seg.SiteInfo() != nil {
			p.site.Store(seg.SiteInfo())
		}

		p.state.PageEmitted()
		select {
		case pages <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.state.AddPagesSkipped(seg.SkippedPages())
	p.state.AddBytesRead(src.BytesRead())
	p.state.AddBytesDecoded(dec.OutputOffset())

	// Integrity is diagnostic, not fatal: a mismatched archive still
	// produced output, the run is just flagged unverified.
	if err := src.Verify(); err != nil {
		p.logger.Warn("archive checksum mismatch",
			slog.String(log.DiagKey, log.DiagChecksum),
			slog.String("name", entry.Name),
			slog.String("error", err.Error()))
		p.state.MarkUnverified()
	}

	return nil
}

// extractRecord runs the per-page work that is safe to parallelize: markup
// parsing and text rendering. Redirect pages bypass the parser; their target
// is already known from the page element.
func (p *Pipeline) extractRecord(rec *model.PageRecord) extract.Result {
	if rec.Redirect {
		target := rec.RedirectTarget
		if target == "" {
			// Some dumps carry a bare <redirect /> element; the target is
			// then only in the body.
			if t, ok := wikitext.ParseRedirect(rec.Text); ok {
				target = t
			}
		}
		return extract.Result{RedirectTarget: target}
	}
	if !rec.HasWikitext() {
		return extract.Result{}
	}
	return p.extractor.Extract(rec.Text)
}

// parseSerial is the single-worker parse stage.
func (p *Pipeline) parseSerial(ctx context.Context, pages <-chan *model.PageRecord, results chan<- pageResult) error {
	var seq int64
	for rec := range pages {
		out := pageResult{seq: seq, rec: rec, res: p.extractRecord(rec)}
		seq++
		select {
		case results <- out:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// parsePool is the multi-worker parse stage. Records are parsed out of
// order but re-sequenced before they reach the sinks, so output order always
// equals archive order.
func (p *Pipeline) parsePool(ctx context.Context, pages <-chan *model.PageRecord, results chan<- pageResult) error {
	workers := p.cfg.ParseWorkers
	tasks := make(chan pageResult, workers)
	parsed := make(chan pageResult, workers)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(tasks)
		var seq int64
		for rec := range pages {
			select {
			case tasks <- pageResult{seq: seq, rec: rec}:
				seq++
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var done atomic.Int64
	for i := 0; i < workers; i++ {
		group.Go(func() error {
			defer func() {
				if done.Add(1) == int64(workers) {
					close(parsed)
				}
			}()
			for task := range tasks {
				task.res = p.extractRecord(task.rec)
				select {
				case parsed <- task:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	group.Go(func() error {
		pending := make(map[int64]pageResult)
		var next int64
		for out := range parsed {
			pending[out.seq] = out
			for {
				ready, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				select {
				case results <- ready:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		if len(pending) != 0 {
			return &stageError{stage: model.StageParse,
				err: fmt.Errorf("%d results never sequenced", len(pending))}
		}
		return nil
	})

	return group.Wait()
}

// consume routes extracted results to the sinks, in order, on a single
// goroutine. All file writes happen here.
func (p *Pipeline) consume(ctx context.Context, results <-chan pageResult) error {
	site := func() *model.SiteInfo { return p.site.Load() }

	for out := range results {
		rec, res := out.rec, out.res

		switch {
		case res.Degraded:
			p.state.PageDegraded()
			p.logger.Warn("markup parse degraded to raw text",
				slog.String(log.DiagKey, log.DiagParseDegraded),
				slog.Int64("id", rec.ID),
				slog.String("title", rec.Title))
		case !rec.Redirect && !rec.HasWikitext():
			p.state.PageSkipped()
			p.logger.Warn("unsupported content model",
				slog.String(log.DiagKey, log.DiagModelSkipped),
				slog.Int64("id", rec.ID),
				slog.String("title", rec.Title),
				slog.String("model", rec.Model))
		}

		var edge *model.RedirectEdge
		if res.RedirectTarget != "" {
			edge = &model.RedirectEdge{Source: rec.Title, Target: res.RedirectTarget}
			p.state.RedirectFound()
		}

		var units []string
		if rec.IsArticle() {
			units = res.Units
		}

		meta := &model.PageMeta{
			ID:            rec.ID,
			Title:         rec.Title,
			Namespace:     rec.Namespace,
			NamespaceName: site().NamespaceName(rec.Namespace),
			RevisionID:    rec.RevisionID,
			Timestamp:     rec.Timestamp,
			Redirect:      res.RedirectTarget,
		}

		if err := p.mux.Page(units, edge, meta); err != nil {
			return &stageError{stage: model.StageSink, err: err}
		}
		if p.db != nil {
			if err := p.db.SavePageMeta(ctx, p.runID, *meta); err != nil {
				return &stageError{stage: model.StageSink, err: err}
			}
		}
		p.state.PageWritten()
	}
	return nil
}
