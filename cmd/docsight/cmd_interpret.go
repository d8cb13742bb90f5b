package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/docsight/internal/pipeline"
	"github.com/user/docsight/internal/source"
	"github.com/user/docsight/internal/view"
	"github.com/user/docsight/pkg/interpret"
	"github.com/user/docsight/pkg/interpret/httpapi"
)

var (
	interpretText     string
	interpretDiagrams string
	interpretLanguage string
	interpretWidth    int
)

func init() {
	rootCmd.AddCommand(interpretCmd)
	interpretCmd.Flags().StringVar(&interpretText, "text", "", "interpret pasted text instead of a file")
	interpretCmd.Flags().StringVar(&interpretDiagrams, "diagrams", "", "comma-separated diagram types (mind_map, flow_chart, table, stat_chart)")
	interpretCmd.Flags().StringVar(&interpretLanguage, "language", "", "response language override")
	interpretCmd.Flags().IntVar(&interpretWidth, "width", 100, "output width")
}

var interpretCmd = &cobra.Command{
	Use:   "interpret [file]",
	Short: "Submit a document or text for interpretation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		var (
			normalized *source.Normalized
			err        error
		)
		switch {
		case interpretText != "":
			normalized, err = source.FromText(interpretText)
		case len(args) == 1:
			normalized, err = source.FromFile(args[0])
		default:
			return fmt.Errorf("provide a file argument or --text")
		}
		if err != nil {
			return err
		}

		// Reject oversized submissions before any network round-trip.
		if normalized.Text != "" {
			if budget, berr := source.NewBudget(cfg.Interpret.MaxSourceTokens); berr != nil {
				slog.Warn("token budget check skipped", "error", berr)
			} else if err := budget.Check(normalized.Text); err != nil {
				return err
			}
		}

		store, adapter, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer adapter.Close()

		language := cfg.Interpret.Language
		if interpretLanguage != "" {
			language = interpretLanguage
		}

		provider := httpapi.New(&interpret.Config{
			BaseURL: cfg.Backend.BaseURL,
			APIKey:  cfg.Backend.APIKey,
		})
		orch := pipeline.New(provider, store, adapter, historyLog(cfg, adapter), pipeline.Options{
			InterpretTimeout: interpretTimeout(cfg),
			DiagramTimeout:   diagramTimeout(cfg),
		})

		ctx := context.Background()
		id, started := orch.Submit(ctx, &pipeline.Submission{
			Source:       normalized,
			DiagramPrefs: diagramPrefs(cfg, interpretDiagrams),
			Language:     language,
		})
		if !started {
			return fmt.Errorf("a submission is already in flight")
		}
		slog.Info("submission started", "session_id", string(id), "source", normalized.DisplayName())

		if !orch.Wait(interpretTimeout(cfg) + diagramTimeout(cfg)) {
			orch.Cancel()
			return fmt.Errorf("pipeline did not settle in time")
		}
		if status, msg := orch.Status(); status == pipeline.StatusErrored {
			return fmt.Errorf("interpretation failed: %s", msg)
		}

		v := view.Hydrate(ctx, store.Current(), adapter, false)
		fmt.Fprintln(os.Stdout, v.Render(interpretWidth))
		return nil
	},
}
