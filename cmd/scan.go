package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"yardwatch/internal/errs"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Process pending detection files once",
	Long:  "Runs a single pass over the watch directory and prints what was ingested, without starting the background monitor.",
	RunE: withApp(func(cmd *cobra.Command, c appComponents) error {
		ctx := cmd.Context()

		if err := c.App.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "init schema")
		}

		summary, err := c.Pipe.ScanAndProcess(ctx)
		if err != nil {
			return errs.Wrap(err, "scan detections")
		}

		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return errs.Wrap(err, "encode summary")
		}
		cmd.Println(string(out))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
