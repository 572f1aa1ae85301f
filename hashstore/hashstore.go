// Package hashstore reads and writes the plain text hash store shared by the
// hashing and grouping phases.
//
// Each image is written as a header, one line per hash kind and a blank
// separator:
//
//	Image: <path>
//	PHash: <value>
//	DHash: <value>
//	WHash: <value>
//	AHash: <value>
//
// Paths are not escaped; a path containing a newline cannot be stored.
package hashstore

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"imagededup/types"

	"github.com/gofrs/flock"
)

const (
	headerPrefix = "Image: "
	separator    = ": "
)

// ParseError describes a malformed store line
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("hash store line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("hash store line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Write serializes the store in insertion order
func Write(w io.Writer, store *types.HashStore) error {
	bw := bufio.NewWriter(w)
	for _, path := range store.Paths() {
		set, _ := store.Get(path)
		if strings.ContainsAny(path, "\r\n") {
			return fmt.Errorf("image path %q contains a line break", path)
		}
		if _, err := fmt.Fprintf(bw, "%s%s\n", headerPrefix, path); err != nil {
			return err
		}
		for _, hv := range set {
			if _, err := fmt.Fprintf(bw, "%s%s%s\n", hv.Kind, separator, hv.Value); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Parse reads a store, rejecting any record that does not carry exactly the
// four known hash kinds
func Parse(r io.Reader) (*types.HashStore, error) {
	store := types.NewHashStore()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		current     string
		currentLine int
		set         types.HashSet
		open        bool
		lineNo      int
	)

	flush := func() error {
		if !open {
			return nil
		}
		if err := set.Validate(); err != nil {
			return &ParseError{Line: currentLine, Text: current, Reason: err.Error()}
		}
		if err := store.Add(current, set); err != nil {
			return &ParseError{Line: currentLine, Text: current, Reason: "duplicate image path"}
		}
		open = false
		set = nil
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, headerPrefix) {
			if err := flush(); err != nil {
				return nil, err
			}
			current = strings.TrimPrefix(line, headerPrefix)
			currentLine = lineNo
			open = true
			if current == "" {
				return nil, &ParseError{Line: lineNo, Text: line, Reason: "empty image path"}
			}
			continue
		}

		if !open {
			return nil, &ParseError{Line: lineNo, Text: line, Reason: "hash line before any image header"}
		}
		kind, value, ok := strings.Cut(line, separator)
		if !ok {
			return nil, &ParseError{Line: lineNo, Text: line, Reason: "expected \"<kind>: <value>\""}
		}
		hashKind := types.HashKind(strings.TrimSpace(kind))
		if !types.IsKnownKind(hashKind) {
			return nil, &ParseError{Line: lineNo, Text: line, Reason: "unknown hash kind"}
		}
		if _, dup := set.Get(hashKind); dup {
			return nil, &ParseError{Line: lineNo, Text: line, Reason: "duplicate hash kind"}
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return nil, &ParseError{Line: lineNo, Text: line, Reason: "empty hash value"}
		}
		set = append(set, types.HashValue{Kind: hashKind, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read hash store: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return store, nil
}

// Exists reports whether a store file is present at path
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func lockPath(path string) string {
	return path + ".lock"
}

// Save replaces the store file at path. The new content is written to a
// temporary file and renamed into place while holding the store lock.
func Save(path string, store *types.HashStore) error {
	dir := filepath.Dir(path)
	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock hash store: %w", err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create hash store: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Write(tmp, store); err != nil {
		tmp.Close()
		return fmt.Errorf("write hash store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close hash store: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod hash store: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace hash store: %w", err)
	}
	return nil
}

// Load parses the store file at path under a shared lock. A missing file
// yields an error wrapping fs.ErrNotExist.
func Load(path string) (*types.HashStore, error) {
	if !Exists(path) {
		return nil, fmt.Errorf("hash store %s: %w", path, fs.ErrNotExist)
	}

	lock := flock.New(lockPath(path))
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock hash store: %w", err)
	}
	defer lock.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hash store: %w", err)
	}
	defer f.Close()

	store, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// FileLoader loads the store from a fixed path
type FileLoader struct {
	Path string
}

// LoadHashStore implements the analyzer loader contract
func (l FileLoader) LoadHashStore() (*types.HashStore, error) {
	return Load(l.Path)
}
