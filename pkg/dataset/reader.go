package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/japaniel/lexgraph/pkg/index"
)

// WordRecord is a parsed words.txt line.
type WordRecord struct {
	Key    index.Key
	Vector []float32
}

// SynsetRecord is a parsed synsets.txt line.
type SynsetRecord struct {
	Name string
	// Senses holds the raw "<word>:<language>:<synset>" tokens.
	Senses []string
}

// Tables is a dataset parsed back into memory. Ids are implicit: the record
// at position i has id i+1.
type Tables struct {
	Words     []WordRecord
	Synsets   []SynsetRecord
	Lemmas    []index.Membership
	Relations map[string][]index.Edge
}

// LiveSynsets counts synsets with a non-empty sense list.
func (t *Tables) LiveSynsets() int {
	n := 0
	for _, s := range t.Synsets {
		if len(s.Senses) > 0 {
			n++
		}
	}
	return n
}

// Read parses the dataset in dir, including the named relation files.
func Read(dir string, relations []string) (*Tables, error) {
	t := &Tables{Relations: make(map[string][]index.Edge)}

	err := scanLines(filepath.Join(dir, WordsFile), func(n int, line string) error {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return fmt.Errorf("empty record")
		}
		k, err := ParseKey(fields[0])
		if err != nil {
			return err
		}
		v := make([]float32, len(fields)-1)
		for i, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return err
			}
			v[i] = float32(x)
		}
		t.Words = append(t.Words, WordRecord{Key: k, Vector: v})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = scanLines(filepath.Join(dir, SynsetsFile), func(n int, line string) error {
		name, rest, ok := strings.Cut(line, " ")
		if !ok || name == "" {
			return fmt.Errorf("missing synset name")
		}
		rec := SynsetRecord{Name: name}
		if rest != "" {
			tokens := strings.Split(rest, ",")
			if tokens[len(tokens)-1] != "" {
				return fmt.Errorf("sense list must end with a comma")
			}
			rec.Senses = tokens[:len(tokens)-1]
		}
		t.Synsets = append(t.Synsets, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = scanLines(filepath.Join(dir, LemmasFile), func(n int, line string) error {
		a, b, err := parsePair(line)
		if err != nil {
			return err
		}
		t.Lemmas = append(t.Lemmas, index.Membership{VocabID: a, SynsetID: b})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, rel := range relations {
		edges := []index.Edge{}
		err := scanLines(filepath.Join(dir, RelationFile(rel)), func(n int, line string) error {
			a, b, err := parsePair(line)
			if err != nil {
				return err
			}
			edges = append(edges, index.Edge{Source: a, Target: b})
			return nil
		})
		if err != nil {
			return nil, err
		}
		t.Relations[rel] = edges
	}
	return t, nil
}

// ParseKey splits "<word>:<language>" at the last colon.
func ParseKey(s string) (index.Key, error) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 || i == len(s)-1 {
		return index.Key{}, fmt.Errorf("bad word key %q", s)
	}
	return index.Key{Word: s[:i], Language: s[i+1:]}, nil
}

func parsePair(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("want two ids, got %d fields", len(fields))
	}
	a, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func scanLines(path string, fn func(n int, line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<22)
	n := 0
	for sc.Scan() {
		n++
		if err := fn(n, sc.Text()); err != nil {
			return fmt.Errorf("%s line %d: %w", filepath.Base(path), n, err)
		}
	}
	return sc.Err()
}
