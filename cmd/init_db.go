package cmd

import (
	"github.com/spf13/cobra"

	"yardwatch/internal/errs"
)

var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create or migrate the yard database schema",
	RunE: withApp(func(cmd *cobra.Command, c appComponents) error {
		if err := c.App.InitSchema(cmd.Context()); err != nil {
			return errs.Wrap(err, "init schema")
		}
		cmd.Println("database schema ready")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
}
