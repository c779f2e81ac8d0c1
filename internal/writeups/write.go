package writeups

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/Bitlatte/ctfsite/internal/config"
	"github.com/Bitlatte/ctfsite/internal/model"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Write serializes index to w. JSON output is indented by two spaces and
// leaves non-ASCII and HTML characters unescaped.
func Write(w io.Writer, index *model.Index, format string) error {
	switch format {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(index); err != nil {
			return fmt.Errorf("failed to encode index as json: %w", err)
		}
		return nil
	case FormatYAML:
		out, err := yaml.Marshal(index)
		if err != nil {
			return fmt.Errorf("failed to encode index as yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unsupported index format %q", format)
	}
}

// WriteFile writes the whole index to path, replacing any previous file.
func WriteFile(path string, index *model.Index, format string) error {
	var buf bytes.Buffer
	if err := Write(&buf, index, format); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write index '%s': %w", path, err)
	}
	return nil
}

// Run builds the index described by cfg and writes it to cfg.OutputPath().
func Run(cfg config.IndexConfig, logger *zap.Logger) (*model.Index, error) {
	b := &Builder{
		Root:               cfg.Root,
		Logger:             logger,
		DeriveDescriptions: cfg.DeriveDescriptions,
	}
	index, err := b.Build()
	if err != nil {
		return nil, err
	}

	out := cfg.OutputPath()
	if err := WriteFile(out, index, cfg.Format); err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("Generated "+filepath.Base(out),
			zap.String("path", out),
			zap.Int("events", index.TotalEvents),
			zap.Int("writeups", index.TotalWriteups))
	}
	return index, nil
}
