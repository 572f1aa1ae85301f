package utils

import (
	"path/filepath"
	"testing"
)

func TestShortenPath(t *testing.T) {
	cases := []struct {
		path string
		max  int
		want string
	}{
		{"/a/b.jpg", 20, "/a/b.jpg"},
		{"/photos/2024/holiday/IMG_0001.jpg", 16, ".../IMG_0001.jpg"},
		{"/über/straße.jpg", 10, "...aße.jpg"},
		{"/photos/x.jpg", 3, "/photos/x.jpg"},
	}
	for _, tc := range cases {
		if got := ShortenPath(tc.path, tc.max); got != tc.want {
			t.Errorf("ShortenPath(%q, %d) = %q, want %q", tc.path, tc.max, got, tc.want)
		}
	}
}

func TestPlural(t *testing.T) {
	cases := []struct {
		n    int
		noun string
		want string
	}{
		{1, "image", "1 image"},
		{0, "image", "0 images"},
		{3, "group", "3 groups"},
		{2, "pass", "2 passes"},
	}
	for _, tc := range cases {
		if got := Plural(tc.n, tc.noun); got != tc.want {
			t.Errorf("Plural(%d, %q) = %q, want %q", tc.n, tc.noun, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(100); got != "100.0%" {
		t.Fatalf("FormatPercent(100) = %q", got)
	}
	if got := FormatPercent(2.25); got != "  2.2%" && got != "  2.3%" {
		t.Fatalf("FormatPercent(2.25) = %q", got)
	}
}

func TestDefaultPaths(t *testing.T) {
	if GetDefaultStorePath() != "image_hashes.txt" {
		t.Fatalf("store path = %s", GetDefaultStorePath())
	}
	if filepath.Base(GetDefaultDatabasePath()) != DefaultDatabaseName {
		t.Fatalf("database path = %s", GetDefaultDatabasePath())
	}
}
