package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/podfetch-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.podfetch")
		v.AddConfigPath("/etc/podfetch")
	}

	// Environment variables only override keys viper knows about
	setDefaults(v, config)
	v.SetEnvPrefix("PODFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper, config *domain.Config) {
	v.SetDefault("feed.url", config.Feed.URL)
	v.SetDefault("feed.file", config.Feed.File)

	v.SetDefault("download.output_dir", config.Download.OutputDir)
	v.SetDefault("download.filename_mode", config.Download.FilenameMode)
	v.SetDefault("download.workers", config.Download.Workers)
	v.SetDefault("download.keep_feed", config.Download.KeepFeed)
	v.SetDefault("download.request_timeout", config.Download.RequestTimeout)
	v.SetDefault("download.user_agent", config.Download.UserAgent)
	v.SetDefault("download.tag_mp3", config.Download.TagMP3)
	v.SetDefault("download.logs_dir", config.Download.LogsDir)

	v.SetDefault("journal.enabled", config.Journal.Enabled)
	v.SetDefault("journal.driver", config.Journal.Driver)
	v.SetDefault("journal.dsn", config.Journal.DSN)

	v.SetDefault("server.host", config.Server.Host)
	v.SetDefault("server.port", config.Server.Port)

	v.SetDefault("notification.enabled", config.Notification.Enabled)
	v.SetDefault("notification.sound", config.Notification.Sound)
	v.SetDefault("notification.method", config.Notification.Method)

	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.format", config.Logging.Format)
	v.SetDefault("logging.output_path", config.Logging.OutputPath)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Feed.File = expandPath(config.Feed.File)
	config.Download.OutputDir = expandPath(config.Download.OutputDir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)

	if config.Journal.Driver == "sqlite" {
		config.Journal.DSN = expandPath(config.Journal.DSN)
	}

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	if strings.Contains(path, "$HOME") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return os.ExpandEnv(path)
}

// ValidateConfig validates the configuration
func ValidateConfig(config *domain.Config) error {
	if config.Feed.URL != "" && config.Feed.File != "" {
		return domain.ErrAmbiguousFeedSource
	}

	if config.Download.OutputDir == "" {
		return fmt.Errorf("download output directory not configured")
	}

	if config.Download.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", config.Download.Workers)
	}

	if _, err := domain.ParseFilenameMode(config.Download.FilenameMode); err != nil {
		return err
	}

	if config.Download.RequestTimeout < 0 {
		return fmt.Errorf("request timeout cannot be negative")
	}

	if config.Journal.Enabled {
		switch config.Journal.Driver {
		case "sqlite", "postgres", "mysql":
		default:
			return fmt.Errorf("unsupported journal driver: %q", config.Journal.Driver)
		}
		if config.Journal.DSN == "" {
			return fmt.Errorf("journal dsn not configured")
		}
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("feed", map[string]interface{}{
		"url":  config.Feed.URL,
		"file": config.Feed.File,
	})
	v.Set("download", map[string]interface{}{
		"output_dir":      config.Download.OutputDir,
		"filename_mode":   config.Download.FilenameMode,
		"workers":         config.Download.Workers,
		"keep_feed":       config.Download.KeepFeed,
		"request_timeout": config.Download.RequestTimeout.String(),
		"user_agent":      config.Download.UserAgent,
		"tag_mp3":         config.Download.TagMP3,
		"logs_dir":        config.Download.LogsDir,
	})
	v.Set("journal", map[string]interface{}{
		"enabled": config.Journal.Enabled,
		"driver":  config.Journal.Driver,
		"dsn":     config.Journal.DSN,
	})
	v.Set("server", map[string]interface{}{
		"host": config.Server.Host,
		"port": config.Server.Port,
	})
	v.Set("notification", map[string]interface{}{
		"enabled": config.Notification.Enabled,
		"sound":   config.Notification.Sound,
		"method":  config.Notification.Method,
	})
	v.Set("logging", map[string]interface{}{
		"level":       config.Logging.Level,
		"format":      config.Logging.Format,
		"output_path": config.Logging.OutputPath,
	})

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
