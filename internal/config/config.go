// Package config handles loading and saving of field, viewer and logging settings.
package config

import (
	"errors"
	"fmt"
)

// Config holds all settings.
type Config struct {
	Field   FieldConfig   `yaml:"field"`
	View    ViewConfig    `yaml:"view"`
	Window  WindowConfig  `yaml:"window"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// FieldConfig holds density field and meshing settings.
type FieldConfig struct {
	ChunkSize int      `yaml:"chunk_size"`
	Cutoff    float32  `yaml:"cutoff"`
	Seed      int64    `yaml:"seed"`
	Strokes   []Stroke `yaml:"strokes"` // Circles painted at startup
}

// Stroke is one circle painted in world coordinates.
type Stroke struct {
	X      float32 `yaml:"x"`
	Y      float32 `yaml:"y"`
	Radius float32 `yaml:"radius"`
}

// ViewConfig holds the reference point and editing settings.
type ViewConfig struct {
	StartX      float32 `yaml:"start_x"`
	StartY      float32 `yaml:"start_y"`
	RenderDist  float32 `yaml:"render_dist"`
	Step        float32 `yaml:"step"`         // World units per arrow key press
	BrushRadius float32 `yaml:"brush_radius"` // Radius painted at the reference point
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// ExportConfig holds chunk image export settings.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	Prefix    string `yaml:"prefix"`
	Format    string `yaml:"format"` // png or bmp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Field: FieldConfig{
			ChunkSize: 32,
			Cutoff:    0.2,
			Seed:      0,
		},
		View: ViewConfig{
			RenderDist:  32,
			Step:        1,
			BrushRadius: 3,
		},
		Window: WindowConfig{
			Width:  1024,
			Height: 1024,
			VSync:  true,
		},
		Export: ExportConfig{
			OutputDir: "exports",
			Prefix:    "chunk",
			Format:    "png",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports settings the field cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Field.ChunkSize < 2 {
		errs = append(errs, fmt.Errorf("field.chunk_size must be at least 2, got %d", c.Field.ChunkSize))
	}
	if c.Field.Cutoff < 0 || c.Field.Cutoff > 1 {
		errs = append(errs, fmt.Errorf("field.cutoff must be within [0,1], got %v", c.Field.Cutoff))
	}
	if c.View.RenderDist <= 0 {
		errs = append(errs, fmt.Errorf("view.render_dist must be positive, got %v", c.View.RenderDist))
	}
	if c.View.BrushRadius < 0 {
		errs = append(errs, fmt.Errorf("view.brush_radius must not be negative, got %v", c.View.BrushRadius))
	}
	switch c.Export.Format {
	case "png", "bmp":
	default:
		errs = append(errs, fmt.Errorf("export.format must be png or bmp, got %q", c.Export.Format))
	}
	for i, s := range c.Field.Strokes {
		if s.Radius <= 0 {
			errs = append(errs, fmt.Errorf("field.strokes[%d].radius must be positive, got %v", i, s.Radius))
		}
	}
	return errors.Join(errs...)
}
