package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/docsight/internal/export"
)

var exportFormat string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "md", "export format (md, yaml)")
}

var exportCmd = &cobra.Command{
	Use:   "export [output-file]",
	Short: "Export the stored session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		store, adapter, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer adapter.Close()

		sess := store.Current()
		if sess == nil {
			return fmt.Errorf("no session to export")
		}

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		out := os.Stdout
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()
			out = f
		}
		return exporter.Export(sess, out)
	},
}
