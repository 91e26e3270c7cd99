package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/podfetch-go/internal/domain"
	"github.com/yourusername/podfetch-go/internal/infrastructure"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled downloads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		runID, _ := cmd.Flags().GetString("run")

		filters := map[string]interface{}{}
		if status != "" {
			if !domain.ValidateStatus(domain.DownloadStatus(status)) {
				return fmt.Errorf("unknown status %q", status)
			}
			filters["status"] = status
		}
		if runID != "" {
			filters["run_id"] = runID
		}

		repo, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		records, err := repo.FindAll(filters)
		if err != nil {
			return fmt.Errorf("failed to read journal: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSTATUS\tEPISODE\tFILE\tWHEN")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				truncate(r.RunID, 8),
				r.Status,
				truncate(r.EpisodeTitle, 40),
				truncate(r.FilePath, 50),
				r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show journal statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		stats, err := repo.GetStats()
		if err != nil {
			return fmt.Errorf("failed to read journal: %w", err)
		}

		fmt.Printf("Runs:       %d\n", stats.Runs)
		fmt.Printf("Total:      %d\n", stats.Total)
		fmt.Printf("Downloaded: %d\n", stats.Downloaded)
		fmt.Printf("Skipped:    %d\n", stats.Skipped)
		fmt.Printf("Failed:     %d\n", stats.Failed)
		return nil
	},
}

func init() {
	historyCmd.Flags().StringP("status", "s", "", "Filter by status (downloaded, skipped, failed)")
	historyCmd.Flags().String("run", "", "Filter by run ID")
}

// openJournal opens the configured journal whether or not recording is enabled
func openJournal(cmd *cobra.Command) (*infrastructure.GormJournalRepository, error) {
	config, err := loadConfig(cmd, nil)
	if err != nil {
		return nil, err
	}
	repo, err := infrastructure.NewJournalRepository(&config.Journal)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return repo, nil
}

// truncate shortens s to at most maxLen bytes for table output
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return domain.TruncateUTF8(s, maxLen-3) + "..."
}
