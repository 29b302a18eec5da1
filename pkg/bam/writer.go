package bam

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// Writer writes records as BAM.
type Writer struct {
	w    *bam.Writer
	file *os.File
}

// Create opens path for writing, or stdout when path is "-".
func Create(path string, h *sam.Header, opts Options) (*Writer, error) {
	if path == "-" {
		return NewWriter(os.Stdout, h, opts)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	w, err := NewWriter(f, h, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.file = f
	return w, nil
}

// NewWriter writes BAM to w. Closing the Writer does not close w.
func NewWriter(w io.Writer, h *sam.Header, opts Options) (*Writer, error) {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	bw, err := bam.NewWriter(w, h, opts.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create BAM writer: %w", err)
	}
	return &Writer{w: bw}, nil
}

// Write appends rec.
func (w *Writer) Write(rec *sam.Record) error {
	return w.w.Write(rec)
}

// Close flushes the BGZF stream and closes the output file, if any.
func (w *Writer) Close() error {
	err := w.w.Close()
	if w.file != nil {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
