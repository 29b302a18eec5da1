package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scttfrdmn/lazybam-go/pkg/lazybam"
)

var (
	viewCount bool
	viewShow  int
)

var viewCmd = &cobra.Command{
	Use:   "view <input.bam>",
	Short: "Show records from a BAM file",
	Long: `Show records from a BAM file as a table.

Only the fields shown are decoded.

Examples:
  lazybam view sample.bam
  lazybam view sample.bam --show 0
  lazybam view sample.bam --count`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openReader(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		if !viewCount {
			fmt.Printf("%-20s %5s %12s %6s %-16s %s\n", "Read Name", "Flag", "Position", "MapQ", "CIGAR", "Tags")
			fmt.Println(strings.Repeat("-", 80))
		}

		shown, total := 0, 0
		for b := range r.Stream(ctx) {
			if b.Err != nil {
				return b.Err
			}
			total += len(b.Records)
			if viewCount {
				continue
			}
			for _, rec := range b.Records {
				if viewShow > 0 && shown >= viewShow {
					break
				}
				printRecord(rec)
				shown++
			}
			if viewShow > 0 && shown >= viewShow {
				break
			}
		}
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		if viewCount {
			fmt.Printf("%d records\n", total)
		}
		return nil
	},
}

func printRecord(rec *lazybam.Record) {
	pos := "*"
	if p, err := rec.Position(); err != nil {
		pos = "invalid"
	} else if p > 0 {
		pos = fmt.Sprint(p)
	}

	tags := make([]string, 0, rec.Tags().Len())
	for _, t := range rec.Tags().Tags() {
		tags = append(tags, t.Name+":"+t.Value.String())
	}

	name := rec.Name()
	if name == "" {
		name = "*"
	}
	fmt.Printf("%-20s %5d %12s %6d %-16s %s\n",
		name,
		rec.Flags(),
		pos,
		rec.MappingQuality(),
		lazybam.CigarString(rec.Cigar()),
		strings.Join(tags, " "))
}

func init() {
	viewCmd.Flags().BoolVar(&viewCount, "count", false,
		"Only show record count, don't display records")
	viewCmd.Flags().IntVar(&viewShow, "show", 10,
		"Number of records to display (0 for all)")
}
