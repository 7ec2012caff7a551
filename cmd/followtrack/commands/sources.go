package commands

import (
	"os"

	"followtrack-backend/lib/configutil"
	"followtrack-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Prints the sources the current config would track, in batch order.",
	Run: func(cmd *cobra.Command, args []string) {
		godotenv.Load()

		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		jobs, err := buildJobs(cfg)
		if err != nil {
			serviceutil.Fatal("failed to assemble sources", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Source", "Profile"})
		for i, job := range jobs {
			t.AppendRow(table.Row{i + 1, job.Extractor.Source(), string(job.Profile)})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
