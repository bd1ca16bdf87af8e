package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the report tool configuration
type Config struct {
	// Run settings (set from CLI flags)
	Path       string `mapstructure:"path"`        // directory to scan
	ReportPath string `mapstructure:"report_path"` // output file, extension selects the format

	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error

	Archive ArchiveConfig `mapstructure:"archive"`
	Report  ReportConfig  `mapstructure:"report"`
}

// ArchiveConfig holds ZIP expansion settings
type ArchiveConfig struct {
	NameEncodings []string `mapstructure:"name_encodings"` // legacy member name decoders, first match wins
	EncodingsFile string   `mapstructure:"encodings_file"` // YAML table overriding NameEncodings
	RestoreMtime  bool     `mapstructure:"restore_mtime"`  // apply ZIP header times to extracted members
}

// ReportConfig holds emitter settings
type ReportConfig struct {
	Title     string `mapstructure:"title"`      // heading for docx/pdf
	SheetName string `mapstructure:"sheet_name"` // xlsx sheet name
	PDFFont   string `mapstructure:"pdf_font"`   // optional UTF-8 TTF font for the pdf emitter
}

// configName is the base name of the optional config file
const configName = "dirreport"

// LoadConfig loads configuration from defaults and an optional dirreport.yaml
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("path", ".")
	v.SetDefault("report_path", "./report.pdf")
	v.SetDefault("log_level", "error")
	v.SetDefault("archive.name_encodings", []string{"cp866", "utf-8"})
	v.SetDefault("archive.encodings_file", "")
	v.SetDefault("archive.restore_mtime", true)
	v.SetDefault("report.title", "File structure report")
	v.SetDefault("report.sheet_name", "File Report")
	v.SetDefault("report.pdf_font", "")

	// Optional config file, no environment lookup
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, configName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
