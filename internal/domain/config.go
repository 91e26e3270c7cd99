package domain

import "time"

// Config represents the application configuration
type Config struct {
	Feed         FeedConfig         `mapstructure:"feed"`
	Download     DownloadConfig     `mapstructure:"download"`
	Journal      JournalConfig      `mapstructure:"journal"`
	Server       ServerConfig       `mapstructure:"server"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// FeedConfig names the feed to fetch. URL and File are mutually exclusive.
type FeedConfig struct {
	URL  string `mapstructure:"url"`
	File string `mapstructure:"file"`
}

// Source converts the feed settings into a FeedSource
func (c FeedConfig) Source() (FeedSource, error) {
	return ParseFeedSource(c.URL, c.File)
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	OutputDir      string        `mapstructure:"output_dir"`
	FilenameMode   string        `mapstructure:"filename_mode"` // date-title or remote-name
	Workers        int           `mapstructure:"workers"`
	KeepFeed       bool          `mapstructure:"keep_feed"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // 0 disables the timeout
	UserAgent      string        `mapstructure:"user_agent"`
	TagMP3         bool          `mapstructure:"tag_mp3"`
	LogsDir        string        `mapstructure:"logs_dir"` // empty disables the JSON event logs
}

// JournalConfig controls the optional download history database
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN     string `mapstructure:"dsn"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sound   bool   `mapstructure:"sound"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultUserAgent is sent with feed and media requests unless configured otherwise
const DefaultUserAgent = "podfetch/1.0"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Download: DownloadConfig{
			OutputDir:      ".",
			FilenameMode:   string(FilenameDateTitle),
			Workers:        4,
			KeepFeed:       false,
			RequestTimeout: 0,
			UserAgent:      DefaultUserAgent,
			TagMP3:         false,
			LogsDir:        "",
		},
		Journal: JournalConfig{
			Enabled: false,
			Driver:  "sqlite",
			DSN:     "$HOME/.podfetch/journal.db",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Sound:   false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
		},
	}
}
