package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"arrival-route-service/internal/domain"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// File-backed implementation of the DestinationRepository port.
// The dataset is a list of destination records in JSON (.json) or YAML (.yaml, .yml).
type FileDestinationRepository struct {
	Path string
}

func NewFileDestinationRepository(path string) *FileDestinationRepository {
	return &FileDestinationRepository{Path: path}
}

// Return all destinations stored in the file, in file order.
func (f *FileDestinationRepository) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadDestinations(f.Path)
}

// LoadDestinations reads and validates a destination dataset file.
func LoadDestinations(path string) ([]domain.Destination, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("load destinations: path must not be empty")
	}

	var format string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		format = FormatJSON
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("load destinations: unsupported file extension %q", ext)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load destinations: read %q: %w", path, err)
	}

	return ParseDestinations(b, format)
}

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseDestinations decodes a list of destinations and validates every record.
func ParseDestinations(b []byte, format string) ([]domain.Destination, error) {
	var data []domain.Destination
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(b, &data)
	case FormatYAML:
		err = yaml.Unmarshal(b, &data)
	default:
		return nil, fmt.Errorf("parse destinations: unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse destinations: %w", err)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	out := make([]domain.Destination, 0, len(data))
	for i, d := range data {
		d.Title = strings.TrimSpace(d.Title)
		if err := v.Struct(d); err != nil {
			return nil, fmt.Errorf("parse destinations: item at index %d: %w", i+1, err)
		}
		out = append(out, d)
	}

	return out, nil
}
