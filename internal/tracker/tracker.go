// Package tracker detects filesystem changes made by a delegated Kimi CLI
// run. It snapshots the working directory before and after execution,
// diffs the two snapshots to find created and modified files, and reads
// the resulting contents for the tool response.
package tracker

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// BinaryPlaceholder is returned in place of binary file content.
// Binary payloads are never transmitted to the calling agent.
const BinaryPlaceholder = "[Binary file, not displayed]"

// chunkSize is the read granularity for both checksumming and binary
// detection. Memory use stays flat regardless of file size.
const chunkSize = 8 * 1024

// ignoredDirs are directory names pruned from traversal entirely.
// Their descendants never appear in a snapshot, at any depth.
var ignoredDirs = map[string]bool{
	".git":         true,
	"__pycache__":  true,
	".venv":        true,
	".DS_Store":    true,
	"node_modules": true,
}

// ignoredSuffixes are file name suffixes excluded from snapshots.
var ignoredSuffixes = []string{".pyc"}

// Snapshot maps root-relative slash-separated file paths to MD5 content
// fingerprints (32-char lowercase hex). A snapshot is never mutated
// once produced.
type Snapshot map[string]string

// Changes holds the result of diffing two snapshots. Created and
// Modified are disjoint; files deleted between snapshots appear in
// neither. Order is unspecified.
type Changes struct {
	Created  []string
	Modified []string
}

// Tracker captures before/after snapshots of one working directory for
// one delegated task. Construct a fresh Tracker per task; it has no
// lifecycle beyond a single initial/final cycle.
type Tracker struct {
	root    string
	initial Snapshot
	final   Snapshot
	logger  *slog.Logger
}

// New returns a Tracker rooted at dir. Relative roots are kept verbatim.
// A nil logger falls back to slog.Default().
func New(dir string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		root:    dir,
		initial: Snapshot{},
		final:   Snapshot{},
		logger:  logger,
	}
}

// Root returns the directory this tracker monitors.
func (t *Tracker) Root() string {
	return t.root
}

// Snapshot walks the root and fingerprints every file reachable through
// the ignore filter. Unreadable files are skipped with a warning. A
// permission error on the root itself aborts the walk and returns
// whatever was collected.
func (t *Tracker) Snapshot() Snapshot {
	snap := Snapshot{}
	err := filepath.WalkDir(t.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == t.root {
				t.logger.Warn("cannot list working directory", "dir", t.root, "error", err)
				return filepath.SkipAll
			}
			t.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != t.root && ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if ignoredDirs[d.Name()] || hasIgnoredSuffix(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(t.root, path)
		if err != nil {
			t.logger.Warn("cannot relativize path", "path", path, "error", err)
			return nil
		}
		sum := t.checksum(path)
		if sum == "" {
			return nil
		}
		snap[filepath.ToSlash(rel)] = sum
		return nil
	})
	if err != nil {
		t.logger.Warn("snapshot walk ended early", "dir", t.root, "error", err)
	}
	return snap
}

// TakeInitialSnapshot records the directory state before Kimi runs.
func (t *Tracker) TakeInitialSnapshot() {
	t.initial = t.Snapshot()
	t.logger.Info("initial snapshot", "dir", t.root, "files", len(t.initial))
}

// TakeFinalSnapshot records the directory state after Kimi finished.
// Calling it without a prior initial snapshot is legal: every file then
// reports as created.
func (t *Tracker) TakeFinalSnapshot() {
	t.final = t.Snapshot()
	t.logger.Info("final snapshot", "dir", t.root, "files", len(t.final))
}

// DetectChanges diffs the final snapshot against the initial one.
// Deleted files are intentionally invisible to this contract.
func (t *Tracker) DetectChanges() Changes {
	var ch Changes
	for path, sum := range t.final {
		prev, ok := t.initial[path]
		switch {
		case !ok:
			ch.Created = append(ch.Created, path)
		case prev != sum:
			ch.Modified = append(ch.Modified, path)
		}
	}
	t.logger.Info("detected changes", "created", len(ch.Created), "modified", len(ch.Modified))
	return ch
}

// ReadFileContents reads the given root-relative paths and returns their
// text content, or BinaryPlaceholder for binary files. Missing or
// undecodable files are absent from the result; callers must not assume
// every requested key is present.
func (t *Tracker) ReadFileContents(paths []string) map[string]string {
	contents := make(map[string]string, len(paths))
	for _, rel := range paths {
		full := filepath.Join(t.root, filepath.FromSlash(rel))
		data, err := os.ReadFile(full)
		if err != nil {
			if !os.IsNotExist(err) {
				t.logger.Warn("cannot read changed file", "path", rel, "error", err)
			}
			continue
		}
		if hasNulPrefix(data) {
			contents[rel] = BinaryPlaceholder
			continue
		}
		text, err := decodeText(data)
		if err != nil {
			t.logger.Warn("cannot decode file content", "path", rel, "error", err)
			continue
		}
		contents[rel] = text
	}
	return contents
}

// checksum streams the file through MD5 in fixed-size chunks and returns
// the lowercase hex digest. Any read error yields "" so the caller can
// drop the entry.
func (t *Tracker) checksum(path string) string {
	f, err := os.Open(path)
	if err != nil {
		t.logger.Warn("cannot open file for checksum", "path", path, "error", err)
		return ""
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			t.logger.Warn("read error during checksum", "path", path, "error", err)
			return ""
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IsBinary reports whether the file at the root-relative path looks
// binary: a NUL byte anywhere in its first 8 KiB. Missing or unreadable
// files report false.
func (t *Tracker) IsBinary(rel string) bool {
	f, err := os.Open(filepath.Join(t.root, filepath.FromSlash(rel)))
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	n, _ := io.ReadFull(f, buf)
	return hasNulPrefix(buf[:n])
}

// decodeText decodes data as UTF-8, falling back to ISO-8859-1 so that
// legacy single-byte content is still surfaced rather than dropped.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func hasNulPrefix(data []byte) bool {
	prefix := data
	if len(prefix) > chunkSize {
		prefix = prefix[:chunkSize]
	}
	for _, b := range prefix {
		if b == 0 {
			return true
		}
	}
	return false
}

func hasIgnoredSuffix(name string) bool {
	for _, suffix := range ignoredSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
