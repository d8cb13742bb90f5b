package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/docsight/internal/view"
)

var showWidth int

func init() {
	rootCmd.AddCommand(showCmd, clearCmd)
	showCmd.Flags().IntVar(&showWidth, "width", 100, "output width")
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Re-display the stored session without contacting the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		store, adapter, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer adapter.Close()

		ctx := context.Background()
		v := view.Hydrate(ctx, store.Current(), adapter, false)
		fmt.Fprintln(os.Stdout, v.Render(showWidth))
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		store, adapter, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer adapter.Close()

		store.Clear(context.Background())
		fmt.Println("Session cleared.")
		return nil
	},
}
