package lazybam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/biogo/hts/sam"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/scttfrdmn/lazybam-go/pkg/bam"
)

// ErrClosed is returned by NextBatch after Close.
var ErrClosed = errors.New("lazybam: reader closed")

// Source yields decoded records one at a time. Read returns io.EOF once
// the stream is exhausted. *bam.File implements Source.
type Source interface {
	Read() (*sam.Record, error)
	Close() error
}

// HeaderSource is implemented by sources that carry a SAM header.
type HeaderSource interface {
	Header() *sam.Header
}

// Reader hands out records from a Source in batches. The source is only
// touched while the reader's lock is held, so NextBatch may be called from
// several goroutines; records are returned in source order.
type Reader struct {
	id        uuid.UUID
	path      string
	batchSize int
	logger    log.Logger
	observe   Observer

	mu   sync.Mutex
	src  Source
	eof  bool
	err  error
	hdr  *sam.Header
	once sync.Once
}

// Option configures a Reader.
type Option func(*Reader)

// WithBatchSize sets the maximum number of records per batch.
func WithBatchSize(n int) Option {
	return func(r *Reader) { r.batchSize = n }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l log.Logger) Option {
	return func(r *Reader) { r.logger = l }
}

// WithObserver installs a callback that receives per-batch statistics.
func WithObserver(o Observer) Option {
	return func(r *Reader) { r.observe = o }
}

// NewReader wraps src. The reader owns src from now on and closes it in
// Close.
func NewReader(src Source, opts ...Option) (*Reader, error) {
	r := &Reader{
		id:        uuid.New(),
		batchSize: 1,
		logger:    log.NewNopLogger(),
		src:       src,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.batchSize < 1 {
		return nil, fmt.Errorf("batch size must be >= 1, got %d", r.batchSize)
	}
	if hs, ok := src.(HeaderSource); ok {
		r.hdr = hs.Header()
	}
	r.logger = log.With(r.logger, "reader", r.id.String())
	return r, nil
}

// Open opens the BAM file at path (a local path or s3://bucket/key) and
// returns a Reader over its records. A nil cfg uses NewConfig.
func Open(ctx context.Context, path string, cfg *Config, opts ...Option) (*Reader, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	f, err := bam.Open(ctx, path, bam.Options{Concurrency: cfg.Concurrency})
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}

	r, err := NewReader(f, append([]Option{WithBatchSize(cfg.BatchSize)}, opts...)...)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.path = path
	return r, nil
}

// ID returns the identifier the reader logs under.
func (r *Reader) ID() uuid.UUID { return r.id }

// BatchSize returns the maximum number of records per batch.
func (r *Reader) BatchSize() int { return r.batchSize }

// Header returns the SAM header of the source, or nil if it has none.
func (r *Reader) Header() *sam.Header { return r.hdr }

// HeaderText returns the header serialized as SAM text.
func (r *Reader) HeaderText() ([]byte, error) {
	if r.hdr == nil {
		return nil, nil
	}
	text, err := r.hdr.MarshalText()
	if err != nil {
		return nil, &IOError{Op: "header", Path: r.path, Err: err}
	}
	return text, nil
}

// NextBatch reads up to BatchSize records. It returns io.EOF once the
// source is exhausted, and keeps doing so. If the source fails part way
// through a batch, the records read so far are discarded and an *IOError
// is returned; the reader then stays failed.
func (r *Reader) NextBatch() ([]*Record, error) {
	raw, stats, read, err := r.readBatch()

	if read {
		if r.observe != nil {
			r.observe(stats)
		}
		switch {
		case stats.Err != nil:
			level.Warn(r.logger).Log("msg", "dropped batch after read error", "dropped", stats.Dropped, "err", stats.Err)
		case stats.EOF:
			level.Debug(r.logger).Log("msg", "end of stream", "records", stats.Records)
		}
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, io.EOF
	}

	records := make([]*Record, len(raw))
	for i, rec := range raw {
		records[i] = NewRecord(rec)
	}
	return records, nil
}

// readBatch performs the locked part of NextBatch. read is false when the
// source was not touched because the reader had already finished.
func (r *Reader) readBatch() (raw []*sam.Record, stats BatchStats, read bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, stats, false, r.err
	}
	if r.eof {
		return nil, stats, false, nil
	}

	start := time.Now()
	raw = make([]*sam.Record, 0, r.batchSize)
	for len(raw) < r.batchSize {
		rec, err := r.src.Read()
		if err == io.EOF {
			r.eof = true
			stats.EOF = true
			break
		}
		if err != nil {
			r.err = &IOError{Op: "read", Path: r.path, Err: err}
			stats.Dropped = len(raw)
			stats.Err = err
			stats.ReadDuration = time.Since(start)
			return nil, stats, true, r.err
		}
		raw = append(raw, rec)
	}
	stats.Records = len(raw)
	stats.ReadDuration = time.Since(start)
	return raw, stats, true, nil
}

// Batch is one result delivered by Stream.
type Batch struct {
	Records []*Record
	Err     error
}

// Stream reads batches on a separate goroutine so that blocking reads do
// not hold up the caller. The channel is closed at end of stream, after a
// batch carrying an error, or when ctx is done. Records keep source order.
func (r *Reader) Stream(ctx context.Context) <-chan Batch {
	out := make(chan Batch, 1)
	go func() {
		defer close(out)
		for {
			records, err := r.NextBatch()
			if err == io.EOF {
				return
			}
			select {
			case out <- Batch{Records: records, Err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}

// Close releases the source. Later NextBatch calls return ErrClosed.
func (r *Reader) Close() error {
	var err error
	r.once.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		err = r.src.Close()
		r.err = ErrClosed
	})
	return err
}
