// Package dataset persists the indexed tables as plain text files, one
// record per line, and reads them back.
package dataset

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"lukechampine.com/blake3"

	"github.com/japaniel/lexgraph/pkg/index"
)

// Fixed file names of the dataset.
const (
	WordsFile    = "words.txt"
	SynsetsFile  = "synsets.txt"
	LemmasFile   = "lemmas.txt"
	ManifestFile = "manifest.json"
	OOVFile      = "oov.txt"
)

// RelationFile returns the file name holding the edges of a relation.
func RelationFile(name string) string { return name + ".txt" }

// FileInfo describes one written file.
type FileInfo struct {
	Name   string `json:"name"`
	Lines  int    `json:"lines"`
	Digest string `json:"blake3"`
}

// Writer writes dataset files into Dir. Each file is written to a temporary
// name and renamed into place once complete, so a reader never sees a
// partial file.
type Writer struct {
	Dir string
}

// NewWriter returns a Writer for dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Writer{Dir: dir}, nil
}

// WriteAll writes words, synsets, lemmas and one file per projection. All
// files are staged first and renamed into place only once every one of them
// has been written; on failure none of the files in Dir are replaced.
func (w *Writer) WriteAll(ix *index.Index, projections []*index.Projection) ([]FileInfo, error) {
	steps := []fileStep{
		{WordsFile, wordsFill(ix.Vocabulary().Entries())},
		{SynsetsFile, synsetsFill(ix.Synsets())},
		{LemmasFile, lemmasFill(ix.Memberships())},
	}
	for _, p := range projections {
		steps = append(steps, fileStep{RelationFile(p.Relation.Name), relationFill(p)})
	}

	var staged []stagedFile
	defer func() {
		for _, sf := range staged {
			os.Remove(sf.tmp)
		}
	}()
	for _, step := range steps {
		sf, err := w.stage(step.name, step.fill)
		if err != nil {
			return nil, err
		}
		staged = append(staged, sf)
	}

	files := make([]FileInfo, 0, len(staged))
	for _, sf := range staged {
		if err := w.commit(sf); err != nil {
			return nil, err
		}
		files = append(files, sf.info)
	}
	return files, nil
}

// WriteWords writes "<word>:<language> <v1> ... <vD>" per entry, in id order.
func (w *Writer) WriteWords(entries []index.Entry) (FileInfo, error) {
	return w.writeFile(WordsFile, wordsFill(entries))
}

func wordsFill(entries []index.Entry) func(*bufio.Writer) (int, error) {
	return func(bw *bufio.Writer) (int, error) {
		var buf []byte
		for _, e := range entries {
			buf = append(buf[:0], e.Key.String()...)
			for _, x := range e.Vector {
				buf = append(buf, ' ')
				buf = strconv.AppendFloat(buf, float64(x), 'g', -1, 32)
			}
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return 0, err
			}
		}
		return len(entries), nil
	}
}

// WriteSynsets writes "<name> <token>,<token>,...," per synset in id order.
// Dead synsets get their name followed by an empty sense list.
func (w *Writer) WriteSynsets(synsets []index.SynsetEntry) (FileInfo, error) {
	return w.writeFile(SynsetsFile, synsetsFill(synsets))
}

func synsetsFill(synsets []index.SynsetEntry) func(*bufio.Writer) (int, error) {
	return func(bw *bufio.Writer) (int, error) {
		for _, e := range synsets {
			bw.WriteString(e.Name())
			bw.WriteByte(' ')
			if live, ok := e.(*index.LiveSynset); ok {
				for _, m := range live.Members {
					bw.WriteString(m.Token(e.Name()))
					bw.WriteByte(',')
				}
			}
			if err := bw.WriteByte('\n'); err != nil {
				return 0, err
			}
		}
		return len(synsets), nil
	}
}

// WriteLemmas writes "<vocabularyId> <synsetId>" per membership record.
func (w *Writer) WriteLemmas(ms []index.Membership) (FileInfo, error) {
	return w.writeFile(LemmasFile, lemmasFill(ms))
}

func lemmasFill(ms []index.Membership) func(*bufio.Writer) (int, error) {
	return func(bw *bufio.Writer) (int, error) {
		for _, m := range ms {
			if err := writePair(bw, m.VocabID, m.SynsetID); err != nil {
				return 0, err
			}
		}
		return len(ms), nil
	}
}

// WriteRelation writes "<sourceId> <targetId>" per surviving edge.
func (w *Writer) WriteRelation(p *index.Projection) (FileInfo, error) {
	return w.writeFile(RelationFile(p.Relation.Name), relationFill(p))
}

func relationFill(p *index.Projection) func(*bufio.Writer) (int, error) {
	return func(bw *bufio.Writer) (int, error) {
		for _, e := range p.Edges {
			if err := writePair(bw, e.Source, e.Target); err != nil {
				return 0, err
			}
		}
		return len(p.Edges), nil
	}
}

// WriteLines writes arbitrary lines to name, e.g. a diagnostic report.
func (w *Writer) WriteLines(name string, lines []string) (FileInfo, error) {
	return w.writeFile(name, func(bw *bufio.Writer) (int, error) {
		for _, l := range lines {
			bw.WriteString(l)
			if err := bw.WriteByte('\n'); err != nil {
				return 0, err
			}
		}
		return len(lines), nil
	})
}

func writePair(bw *bufio.Writer, a, b int) error {
	var buf [48]byte
	out := strconv.AppendInt(buf[:0], int64(a), 10)
	out = append(out, ' ')
	out = strconv.AppendInt(out, int64(b), 10)
	out = append(out, '\n')
	_, err := bw.Write(out)
	return err
}

type fileStep struct {
	name string
	fill func(*bufio.Writer) (int, error)
}

type stagedFile struct {
	tmp  string
	info FileInfo
}

func (w *Writer) writeFile(name string, fill func(*bufio.Writer) (int, error)) (FileInfo, error) {
	sf, err := w.stage(name, fill)
	if err != nil {
		return FileInfo{}, err
	}
	defer os.Remove(sf.tmp)
	if err := w.commit(sf); err != nil {
		return FileInfo{}, err
	}
	return sf.info, nil
}

// stage writes name to a temporary file in Dir and digests it.
func (w *Writer) stage(name string, fill func(*bufio.Writer) (int, error)) (stagedFile, error) {
	tmp, err := os.CreateTemp(w.Dir, "."+name+".*")
	if err != nil {
		return stagedFile{}, fmt.Errorf("create %s: %w", name, err)
	}

	h := blake3.New(32, nil)
	bw := bufio.NewWriterSize(io.MultiWriter(tmp, h), 1<<16)
	lines, err := fill(bw)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return stagedFile{}, fmt.Errorf("write %s: %w", name, err)
	}
	return stagedFile{
		tmp:  tmp.Name(),
		info: FileInfo{Name: name, Lines: lines, Digest: hex.EncodeToString(h.Sum(nil))},
	}, nil
}

func (w *Writer) commit(sf stagedFile) error {
	if err := os.Rename(sf.tmp, filepath.Join(w.Dir, sf.info.Name)); err != nil {
		return fmt.Errorf("rename %s: %w", sf.info.Name, err)
	}
	return nil
}
