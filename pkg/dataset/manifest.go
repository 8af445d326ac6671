package dataset

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"github.com/japaniel/lexgraph/pkg/index"
)

var (
	// ErrDigestMismatch means a file changed after the manifest was written.
	ErrDigestMismatch = errors.New("digest mismatch")
	// ErrCountMismatch means parsed tables disagree with the run summary.
	ErrCountMismatch = errors.New("count mismatch")
	// ErrDanglingReference means a record points outside the tables or at
	// a dead synset.
	ErrDanglingReference = errors.New("dangling reference")
)

// Manifest records what a run wrote.
type Manifest struct {
	RunID       string      `json:"run_id"`
	CreatedAt   time.Time   `json:"created_at"`
	Languages   []string    `json:"languages"`
	Unsupported []string    `json:"unsupported_languages,omitempty"`
	Relations   []string    `json:"relations"`
	Files       []FileInfo  `json:"files"`
	Stats       index.Stats `json:"stats"`
}

// NewManifest stamps a manifest with a fresh run id.
func NewManifest(languages, unsupported []string, projections []*index.Projection, stats index.Stats, files []FileInfo) *Manifest {
	m := &Manifest{
		RunID:       uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
		Languages:   languages,
		Unsupported: unsupported,
		Files:       files,
		Stats:       stats,
	}
	for _, p := range projections {
		m.Relations = append(m.Relations, p.Relation.Name)
	}
	return m
}

// File returns the entry for name.
func (m *Manifest) File(name string) (FileInfo, bool) {
	for _, f := range m.Files {
		if f.Name == name {
			return f, true
		}
	}
	return FileInfo{}, false
}

// WriteManifest stores m as manifest.json in dir.
func WriteManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	tmp := filepath.Join(dir, "."+ManifestFile)
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, ManifestFile))
}

// ReadManifest loads manifest.json from dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// Digest returns the BLAKE3-256 hex digest and line count of a file.
func Digest(path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	r := io.TeeReader(f, h)
	lines := 0
	buf := make([]byte, 1<<16)
	for {
		n, err := r.Read(buf)
		lines += bytes.Count(buf[:n], []byte{'\n'})
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), lines, nil
}

// Report is the outcome of Verify.
type Report struct {
	Manifest    *Manifest
	Words       int
	Synsets     int
	LiveSynsets int
	Lemmas      int
	Edges       map[string]int
}

// Verify checks the dataset in dir against its manifest: file digests and
// line counts, the counters of the run summary, and referential integrity
// of memberships and edges.
func Verify(dir string) (*Report, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	for _, f := range m.Files {
		digest, lines, err := Digest(filepath.Join(dir, f.Name))
		if err != nil {
			return nil, err
		}
		if digest != f.Digest || lines != f.Lines {
			return nil, fmt.Errorf("%w: %s", ErrDigestMismatch, f.Name)
		}
	}

	t, err := Read(dir, m.Relations)
	if err != nil {
		return nil, err
	}
	rep := &Report{
		Manifest:    m,
		Words:       len(t.Words),
		Synsets:     len(t.Synsets),
		LiveSynsets: t.LiveSynsets(),
		Lemmas:      len(t.Lemmas),
		Edges:       make(map[string]int),
	}
	for name, edges := range t.Relations {
		rep.Edges[name] = len(edges)
	}

	checks := []struct {
		what      string
		got, want int
	}{
		{"vocabulary", rep.Words, m.Stats.WordsResolved},
		{"synsets", rep.Synsets, m.Stats.SynsetsTotal},
		{"live synsets", rep.LiveSynsets, m.Stats.SynsetsLive},
		{"sense memberships", rep.Lemmas, m.Stats.SensesEmitted},
	}
	for _, c := range checks {
		if c.got != c.want {
			return rep, fmt.Errorf("%w: %s %d, summary says %d", ErrCountMismatch, c.what, c.got, c.want)
		}
	}

	live := func(id int) bool {
		return id >= 1 && id <= len(t.Synsets) && len(t.Synsets[id-1].Senses) > 0
	}
	for i, l := range t.Lemmas {
		if l.VocabID < 1 || l.VocabID > len(t.Words) || !live(l.SynsetID) {
			return rep, fmt.Errorf("%w: %s line %d", ErrDanglingReference, LemmasFile, i+1)
		}
	}
	for _, name := range m.Relations {
		for i, e := range t.Relations[name] {
			if !live(e.Source) || !live(e.Target) {
				return rep, fmt.Errorf("%w: %s line %d", ErrDanglingReference, RelationFile(name), i+1)
			}
		}
	}
	return rep, nil
}
