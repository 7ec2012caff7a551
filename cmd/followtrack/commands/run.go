package commands

import (
	"fmt"
	"log/slog"
	"time"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/browser/httprt"
	"followtrack-backend/lib/configutil"
	"followtrack-backend/lib/extract"
	"followtrack-backend/lib/retry"
	"followtrack-backend/lib/serviceutil"
	"followtrack-backend/lib/sqliteutil"
	"followtrack-backend/services/statstore"
	"followtrack-backend/services/statstore/db"
	"followtrack-backend/services/submitter"
	"followtrack-backend/services/tracker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile *string

func init() {
	envFile = runCmd.Flags().String("env", ".env", "The dotenv file holding API secrets.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--env <path/to/.env>]",
	Short: "Runs one tracking pass: extract every configured source, submit, and record history.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		err := godotenv.Load(*envFile)
		if err != nil {
			slog.Warn("no dotenv file loaded", "path", *envFile, "err", err)
		}

		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		jobs, err := buildJobs(cfg)
		if err != nil {
			serviceutil.Fatal("failed to assemble sources", err)
		}
		if len(jobs) == 0 {
			serviceutil.Fatal("no sources configured", fmt.Errorf("config.json5 names no sources"))
		}

		provider := browser.NewProvider(httprt.New(httprt.Options{}), browser.ProviderOptions{
			Seed: cfg.Seed,
		})
		controller := extract.NewController(provider, retry.Config{})
		svc := tracker.NewService(controller, jobs, tracker.Options{
			Concurrency: cfg.Concurrency,
			RunDeadline: time.Duration(cfg.RunDeadlineSeconds) * time.Second,
			Seed:        cfg.Seed,
		})

		t1 := time.Now()
		batch := svc.Run(ctx)
		slog.Info("tracking pass complete", "run_id", batch.RunID, "seconds", time.Since(t1).Seconds())

		var outcome submitter.Outcome
		if len(cfg.Forms) > 0 {
			sub := submitter.NewService(submitter.Options{
				Forms:   buildForms(cfg),
				Backoff: retry.Config{},
				Seed:    cfg.Seed,
			})
			outcome = sub.Submit(ctx, batch)
		}

		if cfg.Statstore.Path != "" || cfg.Statstore.URL != "" {
			database, err := sqliteutil.OpenDB(db.Schema, cfg.Statstore.Path, cfg.Statstore.URL)
			if err != nil {
				serviceutil.Fatal("failed to open stat store", err)
			}
			defer database.Close()

			err = statstore.NewService(database).Push(ctx, batch, outcome)
			if err != nil {
				slog.Error("failed to record run history", "run_id", batch.RunID, "err", err)
			}
		}

		fmt.Println(renderSummary(batch, outcome))
	},
}

// renderSummary formats the batch in batch order. A failed source
// shows its failure kind where the count would be; the run still exits
// 0 because a completed pass with gaps is a completed pass.
func renderSummary(batch extract.Batch, outcome submitter.Outcome) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Source", "Count", "Attempts", "Submission"})

	for i, result := range batch.Results {
		var count string
		if result.Succeeded() {
			count = fmt.Sprintf("%d", result.Value)
		} else {
			count = result.Failure.Kind.String()
		}
		submission := ""
		if i < len(outcome.Acks) {
			submission = outcome.Acks[i].Status.String()
			if outcome.Acks[i].Reason != "" {
				submission = fmt.Sprintf("%s (%s)", submission, outcome.Acks[i].Reason)
			}
		}
		t.AppendRow(table.Row{result.Source, count, result.Attempts, submission})
	}

	t.SetStyle(table.StyleRounded)
	return t.Render()
}
