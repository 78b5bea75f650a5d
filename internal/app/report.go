package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bft-labs/livemount/internal/domain"
)

// Output formats for the live mount payload.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// EncodeResult serializes the full cluster response.
func EncodeResult(result domain.LiveMountResult, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		b, err := json.MarshalIndent(result.Payload(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return append(b, '\n'), nil
	case FormatYAML:
		b, err := yaml.Marshal(result.Payload())
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteResult writes the encoded payload to w.
func WriteResult(w io.Writer, result domain.LiveMountResult, format string) error {
	b, err := EncodeResult(result, format)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// WriteResultFile saves the encoded payload to path atomically.
func WriteResultFile(path string, result domain.LiveMountResult, format string) error {
	b, err := EncodeResult(result, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
