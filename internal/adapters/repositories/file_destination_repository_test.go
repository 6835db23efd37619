package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFileDestinationRepositoryJSON(t *testing.T) {
	path := writeFile(t, "destinations.json", `[
		{"title":"Park","description":"by the lake","photo_url":"https://example.com/p.png","lat":-23.5874,"lon":-46.6576},
		{"title":"Museum","lat":-23.56,"lon":-46.65}
	]`)

	repo := NewFileDestinationRepository(path)
	got, err := repo.ListDestinations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 destinations, got %d", len(got))
	}
	if got[0].Title != "Park" || got[0].PhotoURL != "https://example.com/p.png" || got[0].Lat != -23.5874 {
		t.Fatalf("unexpected first destination %+v", got[0])
	}
}

func TestFileDestinationRepositoryYAML(t *testing.T) {
	path := writeFile(t, "destinations.yaml", `
- title: Park
  description: by the lake
  lat: -23.5874
  lon: -46.6576
`)

	got, err := NewFileDestinationRepository(path).ListDestinations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Lon != -46.6576 || got[0].Description != "by the lake" {
		t.Fatalf("unexpected destinations %+v", got)
	}
}

func TestParseDestinationsValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `[{"lat":1,"lon":2}]`},
		{name: "blank title", body: `[{"title":"   ","lat":1,"lon":2}]`},
		{name: "latitude out of range", body: `[{"title":"x","lat":91,"lon":2}]`},
		{name: "longitude out of range", body: `[{"title":"x","lat":1,"lon":-181}]`},
		{name: "bad photo url", body: `[{"title":"x","photo_url":"not a url","lat":1,"lon":2}]`},
		{name: "not a list", body: `{"title":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDestinations([]byte(tt.body), FormatJSON); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseDestinationsUnknownFormat(t *testing.T) {
	if _, err := ParseDestinations([]byte(`[]`), "toml"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadDestinationsErrors(t *testing.T) {
	if _, err := LoadDestinations(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := LoadDestinations(writeFile(t, "d.csv", "title,lat,lon")); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	if _, err := LoadDestinations(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSampleDataset(t *testing.T) {
	got, err := LoadDestinations(filepath.Join("..", "..", "..", "data", "destinations.json"))
	if err != nil {
		t.Fatalf("sample dataset: %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("sample dataset is empty")
	}
}
