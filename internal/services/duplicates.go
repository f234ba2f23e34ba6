package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/store"
)

const DefaultDebounce = 500 * time.Millisecond

// RecordLister is the read side of the store.
type RecordLister interface {
	List(ctx context.Context, f store.Filter) ([]core.ServiceRecord, error)
}

// DuplicateResult is one debounced duplicate check. Seq grows with every
// Check call; only the newest result is ever delivered.
type DuplicateResult struct {
	Seq     uint64
	Title   string
	Records []core.ServiceRecord
	Err     error
}

// DuplicateDetector finds records sharing a title. Find is a direct lookup;
// Check is the debounced form used while a title is being typed.
type DuplicateDetector struct {
	store    RecordLister
	debounce time.Duration
	timeout  time.Duration
	logger   *log.Logger
	group    singleflight.Group

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	closed bool
}

func NewDuplicateDetector(s RecordLister, debounce time.Duration, logger *log.Logger) *DuplicateDetector {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &DuplicateDetector{
		store:    s,
		debounce: debounce,
		timeout:  10 * time.Second,
		logger:   orDiscard(logger).WithComponent(log.ComponentDuplicates),
	}
}

// Debounce is the trailing delay applied by Check.
func (d *DuplicateDetector) Debounce() time.Duration { return d.debounce }

// Find returns the records whose stored title equals the trimmed title.
// Blank titles return nothing without touching the store. Concurrent
// lookups of the same title share one store call, which runs detached from
// any single caller so an abandoned request does not fail the others.
func (d *DuplicateDetector) Find(ctx context.Context, title string) ([]core.ServiceRecord, error) {
	t := core.NormalizeTitle(title)
	if t == "" {
		return nil, nil
	}
	ch := d.group.DoChan(t, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		return d.store.List(lctx, store.Filter{Title: t})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, &OperationError{Op: log.OpFind, Err: fmt.Errorf("find duplicates: %w", ctx.Err())}
	case res = <-ch:
	}
	if res.Err != nil {
		d.logger.ErrorContext(ctx, "Duplicate lookup failed",
			log.FieldOperation, log.OpFind,
			log.FieldTitle, t,
			log.FieldError, res.Err)
		return nil, &OperationError{Op: log.OpFind, Err: fmt.Errorf("find duplicates: %w", res.Err)}
	}
	return res.Val.([]core.ServiceRecord), nil
}

// Check schedules a lookup for title after the debounce delay, cancelling
// any lookup scheduled but not yet started. deliver runs with the detector
// locked, so it must not call Check or Close. Results of superseded checks
// and results arriving after Close are dropped.
func (d *DuplicateDetector) Check(title string, deliver func(DuplicateResult)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return d.seq
	}
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, func() { d.run(seq, title, deliver) })
	return seq
}

func (d *DuplicateDetector) run(seq uint64, title string, deliver func(DuplicateResult)) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	records, err := d.Find(ctx, title)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || seq != d.seq {
		d.logger.Debug("Dropping stale duplicate result", log.FieldTitle, title, "seq", seq, "latest", d.seq)
		return
	}
	deliver(DuplicateResult{Seq: seq, Title: core.NormalizeTitle(title), Records: records, Err: err})
}

// Close stops pending checks. Lookups already running finish but are not delivered.
func (d *DuplicateDetector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
