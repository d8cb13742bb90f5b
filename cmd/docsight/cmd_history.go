package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyClearCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the submission history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past submissions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		adapter, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer adapter.Close()

		entries := historyLog(cfg, adapter).List(context.Background())
		if len(entries) == 0 {
			fmt.Println("No submissions found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tSIZE\tSUBMITTED")
		for _, e := range entries {
			mimeType := e.MimeType
			if mimeType == "" {
				mimeType = "text"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				e.DisplayName,
				mimeType,
				e.SizeBytes,
				e.Timestamp.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all history entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		adapter, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer adapter.Close()

		if err := historyLog(cfg, adapter).Clear(context.Background()); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	},
}
