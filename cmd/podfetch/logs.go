package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/podfetch-go/pkg/logger"
)

var logsCmd = &cobra.Command{
	Use:       "logs <download|error>",
	Short:     "Show today's event log of a category",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(logger.CategoryDownload), string(logger.CategoryError)},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !logger.ValidCategory(args[0]) {
			return fmt.Errorf("unknown log category %q", args[0])
		}
		category := logger.LogCategory(args[0])

		limit, _ := cmd.Flags().GetInt("limit")
		search, _ := cmd.Flags().GetString("search")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		config, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		if config.Download.LogsDir == "" {
			return fmt.Errorf("download.logs_dir is not configured")
		}

		reader := logger.NewLogReader(config.Download.LogsDir)
		var entries []logger.LogEntry
		if search != "" {
			entries, err = reader.SearchLogs(category, time.Now(), search, limit)
		} else {
			entries, err = reader.ReadTodayLogs(category, limit)
		}
		if err != nil {
			return fmt.Errorf("failed to read logs: %w", err)
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			for _, entry := range entries {
				if err := enc.Encode(entry); err != nil {
					return err
				}
			}
			return nil
		}

		for _, entry := range entries {
			fmt.Println(formatEntry(entry))
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().IntP("limit", "l", 100, "Maximum number of entries, 0 for all")
	logsCmd.Flags().StringP("search", "q", "", "Only show entries containing this text")
	logsCmd.Flags().BoolP("json", "j", false, "Output in JSON format")
}

func formatEntry(entry logger.LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-5s  %s", entry.Timestamp, strings.ToUpper(entry.Level), entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s=%v", k, entry.Fields[k])
	}
	return b.String()
}
