package main

import (
	"os"

	"github.com/spf13/cobra"
)

var headerCmd = &cobra.Command{
	Use:   "header <input.bam>",
	Short: "Print the SAM header of a BAM file",
	Long: `Print the SAM header text of a BAM file.

Examples:
  lazybam header sample.bam
  lazybam header s3://bucket/runs/sample.bam`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openReader(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		text, err := r.HeaderText()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(text)
		return err
	},
}
