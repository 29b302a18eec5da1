package main

import (
	"fmt"
	"time"

	"github.com/biogo/hts/sam"
	"github.com/spf13/cobra"

	"github.com/scttfrdmn/lazybam-go/pkg/lazybam"
)

// recordStats accumulates counts over decoded records.
type recordStats struct {
	Total          int
	Mapped         int
	Unmapped       int
	Duplicate      int
	TotalBases     int
	BadPosition    int
	Batches        int
	DroppedBatches int
	ReadTime       time.Duration
}

func (s *recordStats) add(d lazybam.Decoded) {
	s.Total++
	flags := sam.Flags(d.Flags)
	if flags&sam.Unmapped != 0 {
		s.Unmapped++
	} else {
		s.Mapped++
	}
	if flags&sam.Duplicate != 0 {
		s.Duplicate++
	}
	s.TotalBases += len(d.Sequence)
	if d.PositionErr != nil {
		s.BadPosition++
	}
}

func (s *recordStats) observe(b lazybam.BatchStats) {
	s.ReadTime += b.ReadDuration
	if b.Records > 0 {
		s.Batches++
	}
	if b.Err != nil {
		s.DroppedBatches++
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

var statsCmd = &cobra.Command{
	Use:   "stats <input.bam>",
	Short: "Show statistics for a BAM file",
	Long: `Scan a BAM file and display record statistics.

Each batch is decoded in parallel using --workers goroutines.

Example:
  lazybam stats sample.bam --batch-size 10000 --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var stats recordStats
		r, err := openReader(cmd.Context(), args[0], stats.observe)
		if err != nil {
			return err
		}
		defer r.Close()

		start := time.Now()
		var readErr error
		for b := range r.Stream(cmd.Context()) {
			if b.Err != nil {
				readErr = b.Err
				break
			}
			for _, d := range lazybam.DecodeBatch(b.Records, cfg.Workers) {
				stats.add(d)
			}
		}
		elapsed := time.Since(start)

		fmt.Println("===========================================")
		fmt.Println("BAM Record Statistics")
		fmt.Println("===========================================")
		fmt.Println()
		fmt.Printf("Input: %s\n", args[0])
		if h := r.Header(); h != nil {
			fmt.Printf("References: %d\n", len(h.Refs()))
		}
		fmt.Println()

		fmt.Println("Statistics:")
		fmt.Printf("  Total records: %d\n", stats.Total)
		fmt.Printf("  Mapped records: %d (%.2f%%)\n", stats.Mapped, percent(stats.Mapped, stats.Total))
		fmt.Printf("  Unmapped records: %d (%.2f%%)\n", stats.Unmapped, percent(stats.Unmapped, stats.Total))
		fmt.Printf("  Duplicate records: %d\n", stats.Duplicate)
		fmt.Printf("  Total bases: %d\n", stats.TotalBases)
		if stats.BadPosition > 0 {
			fmt.Printf("  Invalid positions: %d\n", stats.BadPosition)
		}
		fmt.Println()

		fmt.Println("Reading:")
		fmt.Printf("  Batches: %d (batch size %d)\n", stats.Batches, r.BatchSize())
		fmt.Printf("  Dropped batches: %d\n", stats.DroppedBatches)
		fmt.Printf("  Time reading: %s\n", stats.ReadTime.Round(time.Millisecond))
		fmt.Printf("  Elapsed: %s\n", elapsed.Round(time.Millisecond))

		if readErr != nil {
			return fmt.Errorf("scan stopped early: %w", readErr)
		}
		return cmd.Context().Err()
	},
}
