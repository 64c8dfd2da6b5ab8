package cmd

import (
	"github.com/spf13/cobra"

	"yardwatch/internal/errs"
	"yardwatch/internal/usecase/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write a sample detection file into the watch directory",
	Long:  "Drops a small sample detection file so the monitor or a manual scan has data to ingest on a fresh install.",
	RunE: withApp(func(cmd *cobra.Command, c appComponents) error {
		path, err := seed.WriteSampleDetections(cmd.Context(), c.Pipe.WatchDir())
		if err != nil {
			return errs.Wrap(err, "write sample detections")
		}
		cmd.Printf("sample detection file written: %s\n", path)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
