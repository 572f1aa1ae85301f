package hashstore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"imagededup/types"
)

func hashSet(seed string) types.HashSet {
	return types.HashSet{
		{Kind: types.PHash, Value: "p" + seed},
		{Kind: types.DHash, Value: "d" + seed},
		{Kind: types.WHash, Value: "w" + seed},
		{Kind: types.AHash, Value: "a" + seed},
	}
}

func TestWriteFormat(t *testing.T) {
	store := types.NewHashStore()
	if err := store.Add("/photos/a.jpg", hashSet("1")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, store); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "Image: /photos/a.jpg\nPHash: p1\nDHash: d1\nWHash: w1\nAHash: a1\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestRoundTripPreservesOrderAndValues(t *testing.T) {
	store := types.NewHashStore()
	paths := []string{"z/last.png", "a/first.jpg", "m/ünïcode name.heic", "dir with spaces/x.jpeg"}
	for i, p := range paths {
		if err := store.Add(p, hashSet(fmt.Sprintf("%04x", i))); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := Write(&buf, store); err != nil {
		t.Fatal(err)
	}
	parsed, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if parsed.Len() != len(paths) {
		t.Fatalf("parsed %d entries, want %d", parsed.Len(), len(paths))
	}
	for i, p := range parsed.Paths() {
		if p != paths[i] {
			t.Fatalf("path %d = %q, want %q", i, p, paths[i])
		}
		got, _ := parsed.Get(p)
		want, _ := store.Get(p)
		if len(got) != len(want) {
			t.Fatalf("%s: %d kinds, want %d", p, len(got), len(want))
		}
		for k := range want {
			if got[k] != want[k] {
				t.Fatalf("%s kind %d = %+v, want %+v", p, k, got[k], want[k])
			}
		}
	}
}

func TestParseEmpty(t *testing.T) {
	store, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestParseToleratesCRLFAndExtraBlankLines(t *testing.T) {
	input := "\r\nImage: a.jpg\r\nPHash: 1\r\nDHash: 2\r\nWHash: 3\r\nAHash: 4\r\n\r\n\r\n"
	store, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	set, ok := store.Get("a.jpg")
	if !ok {
		t.Fatalf("missing entry, paths: %v", store.Paths())
	}
	if v, _ := set.Get(types.AHash); v != "4" {
		t.Fatalf("AHash = %q", v)
	}
}

func TestParseErrors(t *testing.T) {
	full := "PHash: 1\nDHash: 2\nWHash: 3\nAHash: 4\n"
	cases := []struct {
		name   string
		input  string
		line   int
		reason string
	}{
		{"hash before header", "PHash: 1\n", 1, "before any image header"},
		{"header without hashes", "Image: a.jpg\n\nImage: b.jpg\n" + full, 1, "expected 4 hash kinds, got 0"},
		{"trailing header without hashes", "Image: a.jpg\n" + full + "\nImage: b.jpg\n", 7, "expected 4 hash kinds, got 0"},
		{"missing kind", "Image: a.jpg\nPHash: 1\nDHash: 2\nWHash: 3\n", 1, "expected 4 hash kinds, got 3"},
		{"no separator", "Image: a.jpg\nPHash 1\n", 2, "expected"},
		{"unknown kind", "Image: a.jpg\nXHash: 1\n", 2, "unknown hash kind"},
		{"duplicate kind", "Image: a.jpg\nPHash: 1\nPHash: 1\n", 3, "duplicate hash kind"},
		{"empty value", "Image: a.jpg\nPHash: \n", 2, "empty hash value"},
		{"duplicate path", "Image: a.jpg\n" + full + "\nImage: a.jpg\n" + full, 7, "duplicate image path"},
		{"empty path", "Image: \n", 1, "empty image path"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Line != tc.line {
				t.Fatalf("line = %d, want %d (%v)", perr.Line, tc.line, perr)
			}
			if !strings.Contains(perr.Reason, tc.reason) {
				t.Fatalf("reason = %q, want it to contain %q", perr.Reason, tc.reason)
			}
		})
	}
}

func TestWriteRejectsLineBreakInPath(t *testing.T) {
	store := types.NewHashStore()
	if err := store.Add("bad\nname.jpg", hashSet("1")); err != nil {
		t.Fatal(err)
	}
	if err := Write(&bytes.Buffer{}, store); err == nil {
		t.Fatal("expected error for path with newline")
	}
}

func TestSaveOverwritesAndLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image_hashes.txt")
	if Exists(path) {
		t.Fatal("store should not exist yet")
	}

	first := types.NewHashStore()
	_ = first.Add("old.jpg", hashSet("0"))
	if err := Save(path, first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := types.NewHashStore()
	_ = second.Add("new1.jpg", hashSet("1"))
	_ = second.Add("new2.jpg", hashSet("2"))
	if err := Save(path, second); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists(path) {
		t.Fatal("store should exist")
	}

	loaded, err := FileLoader{Path: path}.LoadHashStore()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded.Paths(); len(got) != 2 || got[0] != "new1.jpg" || got[1] != "new2.jpg" {
		t.Fatalf("unexpected paths after overwrite: %v", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestLoadMissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.txt")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}

	bad := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(bad, []byte("Image: a.jpg\nPHash: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(bad)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}
