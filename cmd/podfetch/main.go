package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/podfetch-go/internal/app"
	"github.com/yourusername/podfetch-go/internal/domain"
	"github.com/yourusername/podfetch-go/internal/infrastructure"
	"github.com/yourusername/podfetch-go/pkg/logger"
)

var (
	configPath        string
	logLevel          string
	feedFile          string
	outputDir         string
	useRemoteFilename bool
	keepRSSFeed       bool
	nThreads          int
	requestTimeout    time.Duration
	tagMP3            bool
	useJournal        bool

	rootCmd = &cobra.Command{
		Use:   "podfetch [feed-url]",
		Short: "Download every episode of a podcast feed",
		Long: `podfetch reads an RSS, Atom or JSON feed from a URL or a local file and
downloads each episode's enclosure into the output directory. Files that
already exist are skipped, so running it again only fetches new episodes.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDownload,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./configs/config.yaml, $HOME/.podfetch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	registerRunFlags(rootCmd)

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func registerRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&feedFile, "file", "", "Read the feed from a local file instead of a URL")
	flags.StringVarP(&outputDir, "output-dir", "o", ".", "Directory to download episodes into")
	flags.BoolVarP(&useRemoteFilename, "use-remote-filename", "r", false, "Name files after the enclosure URL instead of date and title")
	flags.BoolVarP(&keepRSSFeed, "keep-rss-feed", "k", false, "Save a dated copy of the feed next to the episodes")
	flags.IntVarP(&nThreads, "n-threads", "n", 4, "Number of parallel downloads")
	flags.DurationVar(&requestTimeout, "timeout", 0, "Per-request timeout, 0 for none")
	flags.BoolVar(&tagMP3, "tag-mp3", false, "Write ID3 tags into downloaded MP3 files")
	flags.BoolVar(&useJournal, "journal", false, "Record every outcome in the download journal")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the flags the user set explicitly
func loadConfig(cmd *cobra.Command, args []string) (*domain.Config, error) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, args, config); err != nil {
		return nil, err
	}
	if err := app.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func applyFlags(cmd *cobra.Command, args []string, config *domain.Config) error {
	flags := cmd.Flags()

	// A feed given on the command line replaces the configured one entirely
	if len(args) > 0 || flags.Changed("file") {
		config.Feed.URL, config.Feed.File = "", ""
		if len(args) > 0 {
			config.Feed.URL = args[0]
		}
		if flags.Changed("file") {
			config.Feed.File = feedFile
		}
	}

	if flags.Changed("output-dir") {
		config.Download.OutputDir = outputDir
	}
	if flags.Changed("use-remote-filename") {
		config.Download.FilenameMode = string(domain.FilenameDateTitle)
		if useRemoteFilename {
			config.Download.FilenameMode = string(domain.FilenameRemote)
		}
	}
	if flags.Changed("keep-rss-feed") {
		config.Download.KeepFeed = keepRSSFeed
	}
	if flags.Changed("n-threads") {
		if nThreads < 1 {
			return fmt.Errorf("--n-threads must be positive, got %d", nThreads)
		}
		config.Download.Workers = nThreads
	}
	if flags.Changed("timeout") {
		config.Download.RequestTimeout = requestTimeout
	}
	if flags.Changed("tag-mp3") {
		config.Download.TagMP3 = tagMP3
	}
	if flags.Changed("journal") {
		config.Journal.Enabled = useJournal
	}
	if flags.Changed("log-level") {
		config.Logging.Level = logLevel
	}
	return nil
}

func newLogger(config *domain.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
}

func newEventLog(config *domain.Config) (*logger.MultiLogger, error) {
	if config.Download.LogsDir == "" {
		return nil, nil
	}
	return logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Download.LogsDir,
	})
}

func runDownload(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	source, err := config.Feed.Source()
	if err != nil {
		return err
	}
	mode, err := domain.ParseFilenameMode(config.Download.FilenameMode)
	if err != nil {
		return err
	}

	log, err := newLogger(config)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	multiLog, err := newEventLog(config)
	if err != nil {
		return fmt.Errorf("failed to initialize event log: %w", err)
	}

	client := infrastructure.NewHTTPClient(config.Download.RequestTimeout)
	fetcher := infrastructure.NewHTTPMediaFetcher(client, config.Download.UserAgent)

	var (
		engineOpts []app.EngineOption
		runnerOpts []app.RunnerOption
	)
	if multiLog != nil {
		defer multiLog.Close()
		engineOpts = append(engineOpts, app.WithEventLog(multiLog))
		runnerOpts = append(runnerOpts, app.WithRunEventLog(multiLog))
	}
	if config.Journal.Enabled {
		repo, err := infrastructure.NewJournalRepository(&config.Journal)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer repo.Close()
		engineOpts = append(engineOpts, app.WithJournal(repo))
	}
	if config.Download.TagMP3 {
		engineOpts = append(engineOpts, app.WithTagger(infrastructure.NewID3Tagger(log)))
	}
	if config.Notification.Enabled {
		runnerOpts = append(runnerOpts, app.WithNotifier(infrastructure.NewNotificationService(&config.Notification, log)))
	}

	engine := app.NewDownloadEngine(fetcher, &config.Download, log, engineOpts...)
	runner := app.NewRunner(
		infrastructure.NewFeedLoader(client, config.Download.UserAgent, log),
		infrastructure.NewGofeedParser(),
		engine,
		log,
		runnerOpts...,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := runner.Run(ctx, app.RunRequest{
		Source:    source,
		OutputDir: config.Download.OutputDir,
		Mode:      mode,
		Workers:   config.Download.Workers,
		KeepFeed:  config.Download.KeepFeed,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d downloaded, %d skipped, %d failed, %d invalid items\n",
		report.FeedTitle, report.Downloaded(), report.Skipped(), report.Failed(), len(report.ExtractionFailures))
	if report.ArchivePath != "" {
		fmt.Printf("Feed saved to %s\n", report.ArchivePath)
	}
	return nil
}
