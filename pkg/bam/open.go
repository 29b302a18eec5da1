// Package bam opens BAM streams from local files or S3 and decodes them
// with biogo/hts.
package bam

import (
	"context"
	"fmt"
	"io"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// Options configures how a BAM stream is decoded.
type Options struct {
	Concurrency int // BGZF decompression goroutines (default: 1)
}

// File is an open BAM stream.
type File struct {
	r       *bam.Reader
	release func()
	body    io.Closer
}

// Open opens path, which may be a local file, "-" for stdin, or an
// s3://bucket/key URI. Zstd-wrapped BAM files are detected and unwrapped.
func Open(ctx context.Context, path string, opts Options) (*File, error) {
	body, err := openStorage(ctx, path)
	if err != nil {
		return nil, err
	}

	f, err := NewFile(body, opts)
	if err != nil {
		body.Close()
		return nil, err
	}
	f.body = body
	return f, nil
}

// NewFile decodes BAM data from r. Closing the File does not close r.
func NewFile(r io.Reader, opts Options) (*File, error) {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	in, release, err := unwrap(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read BAM stream: %w", err)
	}

	br, err := bam.NewReader(in, opts.Concurrency)
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to create BAM reader: %w", err)
	}

	return &File{r: br, release: release}, nil
}

// Read returns the next record, or io.EOF at the end of the stream.
func (f *File) Read() (*sam.Record, error) {
	return f.r.Read()
}

// Header returns the SAM header.
func (f *File) Header() *sam.Header {
	return f.r.Header()
}

// HeaderText returns the header as SAM text.
func (f *File) HeaderText() ([]byte, error) {
	return f.r.Header().MarshalText()
}

// Close releases the decoder and the underlying stream.
func (f *File) Close() error {
	err := f.r.Close()
	f.release()
	if f.body != nil {
		if cerr := f.body.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
