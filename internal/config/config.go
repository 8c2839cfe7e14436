// Package config handles crftool configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/jabia-crf/internal/codec"
	"github.com/Faultbox/jabia-crf/internal/logger"
	"github.com/Faultbox/jabia-crf/pkg/crf"
)

// Config holds all crftool settings.
type Config struct {
	Logging      LoggingConfig    `yaml:"logging"`
	Quantization crf.Quantization `yaml:"quantization"`
	Textures     TexturesConfig   `yaml:"textures"`
	Export       ExportConfig     `yaml:"export"`
	Output       OutputConfig     `yaml:"output"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// TexturesConfig controls texture lookup next to CRF files.
type TexturesConfig struct {
	SearchDirs []string `yaml:"search_dirs"` // Searched after the built-in candidates
	Extensions []string `yaml:"extensions"`  // Empty accepts any extension
}

// ExportConfig holds the header values written on export.
type ExportConfig struct {
	ObjectType  uint32 `yaml:"object_type"`
	SubMagic    uint16 `yaml:"sub_magic"`
	FormatMagic uint16 `yaml:"format_magic"`
}

// OutputConfig selects the interchange document format.
type OutputConfig struct {
	Format string `yaml:"format"` // yaml, json or msgpack
}

// Default returns a Config with the exporter's values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Quantization: crf.DefaultQuantization(),
		Textures: TexturesConfig{
			Extensions: []string{".dds", ".tga", ".png", ".bmp", ".jpg", ".webp", ".tif"},
		},
		Export: ExportConfig{
			ObjectType:  crf.ObjectTypeDefault,
			SubMagic:    crf.DefaultSubMagic,
			FormatMagic: crf.DefaultFormatMagic,
		},
		Output: OutputConfig{
			Format: "yaml",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if err := c.Quantization.Validate(); err != nil {
		return err
	}
	switch c.Export.ObjectType {
	case crf.ObjectTypeDefault, crf.ObjectTypeSecondary:
	default:
		return fmt.Errorf("export.object_type: unsupported value %d", c.Export.ObjectType)
	}
	if _, err := codec.ForName(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	return nil
}
