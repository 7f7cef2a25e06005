// Package config resolves runtime settings from layered sources:
// built-in defaults, a YAML file, environment variables, and CLI flags,
// highest precedence last.
package config

import (
	"fmt"
	"path/filepath"
)

// ConfigError represents a configuration error. It maps to a non-zero
// process exit.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Settings is the immutable per-process settings snapshot.
type Settings struct {
	PlaylistFile    string
	OutputDir       string
	ArchiveFile     string
	Quality         string
	RateLimit       bool
	MaxRetries      int
	PollInterval    int // seconds; 0 means one-shot
	LogFile         string
	Verbose         bool
	ReportDir       string
	ReportRetention int
}

// Defaults returns the built-in defaults, the lowest-precedence layer.
func Defaults() Settings {
	return Settings{
		OutputDir:       "/downloads",
		Quality:         "320k",
		MaxRetries:      3,
		PollInterval:    600,
		ReportRetention: 20,
	}
}

// FileConfig is the YAML config file shape. Fields are pointers so an
// absent key never masks a lower-precedence value.
type FileConfig struct {
	OutputDir       *string `yaml:"output_dir"`
	Quality         *string `yaml:"quality"`
	RateLimit       *int    `yaml:"rate_limit"`
	MaxRetries      *int    `yaml:"max_retries"`
	PollInterval    *int    `yaml:"poll_interval"`
	LogFile         *string `yaml:"log_file"`
	Verbose         *int    `yaml:"verbose"`
	ArchiveFile     *string `yaml:"archive_file"`
	ReportDir       *string `yaml:"report_dir"`
	ReportRetention *int    `yaml:"report_retention"`
}

// Overrides carries values set explicitly on the command line or through
// environment variables. Set flags gate which fields apply.
type Overrides struct {
	PlaylistFile string

	OutputDir    string
	OutputDirSet bool

	Quality    string
	QualitySet bool

	RateLimit    bool
	RateLimitSet bool

	MaxRetries    int
	MaxRetriesSet bool

	PollInterval    int
	PollIntervalSet bool

	LogFile    string
	LogFileSet bool

	Verbose    bool
	VerboseSet bool

	ArchiveFile    string
	ArchiveFileSet bool
}

// Resolve merges the layers into one Settings value. It is pure: no
// environment reads, no filesystem access.
func Resolve(file *FileConfig, ov Overrides) Settings {
	s := Defaults()

	if file != nil {
		if file.OutputDir != nil {
			s.OutputDir = *file.OutputDir
		}
		if file.Quality != nil {
			s.Quality = *file.Quality
		}
		if file.RateLimit != nil {
			s.RateLimit = *file.RateLimit != 0
		}
		if file.MaxRetries != nil {
			s.MaxRetries = *file.MaxRetries
		}
		if file.PollInterval != nil {
			s.PollInterval = *file.PollInterval
		}
		if file.LogFile != nil {
			s.LogFile = *file.LogFile
		}
		if file.Verbose != nil {
			s.Verbose = *file.Verbose != 0
		}
		if file.ArchiveFile != nil {
			s.ArchiveFile = *file.ArchiveFile
		}
		if file.ReportDir != nil {
			s.ReportDir = *file.ReportDir
		}
		if file.ReportRetention != nil {
			s.ReportRetention = *file.ReportRetention
		}
	}

	s.PlaylistFile = ov.PlaylistFile
	if ov.OutputDirSet {
		s.OutputDir = ov.OutputDir
	}
	if ov.QualitySet {
		s.Quality = ov.Quality
	}
	if ov.RateLimitSet {
		s.RateLimit = ov.RateLimit
	}
	if ov.MaxRetriesSet {
		s.MaxRetries = ov.MaxRetries
	}
	if ov.PollIntervalSet {
		s.PollInterval = ov.PollInterval
	}
	if ov.LogFileSet {
		s.LogFile = ov.LogFile
	}
	if ov.VerboseSet {
		s.Verbose = ov.Verbose
	}
	if ov.ArchiveFileSet {
		s.ArchiveFile = ov.ArchiveFile
	}

	if s.ArchiveFile == "" {
		s.ArchiveFile = filepath.Join(s.OutputDir, ".ytmwatch-archive.txt")
	}
	if s.ReportDir == "" {
		s.ReportDir = filepath.Join(s.OutputDir, ".ytmwatch", "runs")
	}

	return s
}

// Validate checks resolved settings for values that cannot work.
func (s Settings) Validate() error {
	if s.PlaylistFile == "" {
		return &ConfigError{Message: "playlist file is required"}
	}
	if s.MaxRetries < 1 {
		return &ConfigError{Message: fmt.Sprintf("max_retries must be at least 1, got %d", s.MaxRetries)}
	}
	if s.PollInterval < 0 {
		return &ConfigError{Message: fmt.Sprintf("poll_interval must not be negative, got %d", s.PollInterval)}
	}
	return nil
}
