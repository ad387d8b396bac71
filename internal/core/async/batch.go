// Package async runs the document processor over a batch of documents.
package async

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/pdf-fields/internal/common"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
)

// DocumentProcessor builds the record of one document. It must always return a record.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc entity.Document) *entity.Record
}

// Batch fans documents out to a bounded number of workers. Record i always belongs
// to document i, whatever order the workers finish in.
type Batch struct {
	proc    DocumentProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration
}

type Option func(*Batch)

func WithWorkers(n int) Option {
	return func(b *Batch) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithDocumentTimeout bounds each document; 0 disables the bound.
func WithDocumentTimeout(d time.Duration) Option {
	return func(b *Batch) {
		if d >= 0 {
			b.timeout = d
		}
	}
}

func NewBatch(proc DocumentProcessor, logger *slog.Logger, opts ...Option) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Batch{
		proc:    proc,
		logger:  logger,
		workers: 1,
		timeout: 3 * time.Minute,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Summary counts the outcome of a run.
type Summary struct {
	Processed int
	Failed    int
	Elapsed   time.Duration
}

// Summarize counts processed and failed records.
func Summarize(records []*entity.Record, elapsed time.Duration) Summary {
	s := Summary{Processed: len(records), Elapsed: elapsed}
	for _, r := range records {
		if r.Failed() {
			s.Failed++
		}
	}
	return s
}

// Run processes docs and returns one record per document in input order. A failing
// document yields a failed record and never stops the others. When ctx is canceled the
// documents not yet started are returned as failed records.
func (b *Batch) Run(ctx context.Context, docs []entity.Document) ([]*entity.Record, Summary) {
	start := time.Now()
	records := make([]*entity.Record, len(docs))

	g := new(errgroup.Group)
	g.SetLimit(b.workers)
	for i, doc := range docs {
		g.Go(func() error {
			records[i] = b.processOne(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	sum := Summarize(records, time.Since(start))
	b.logger.Info("batch.run.ok",
		"run_id", common.RunIDFromContext(ctx),
		"workers", b.workers,
		"processed", sum.Processed,
		"failed", sum.Failed,
		"duration_ms", sum.Elapsed.Milliseconds(),
	)
	return records, sum
}

func (b *Batch) processOne(ctx context.Context, doc entity.Document) (rec *entity.Record) {
	if err := ctx.Err(); err != nil {
		rec = entity.NewRecord(doc.Filename)
		rec.Fail(common.DocumentError("canceled", err))
		return rec
	}

	ctx = common.WithDocument(ctx, doc.Filename)
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("batch.document.panic", "file", doc.Filename, "panic", r)
			rec = entity.NewRecord(doc.Filename)
			rec.Fail(common.DocumentError("panic", fmt.Errorf("%v", r)))
		}
	}()

	rec = b.proc.ProcessDocument(ctx, doc)
	if rec == nil {
		rec = entity.NewRecord(doc.Filename)
		rec.Fail(common.DocumentError("process", fmt.Errorf("no record produced")))
	}
	return rec
}
