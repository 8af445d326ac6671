// Package embedding loads pretrained word vectors in the fastText text
// format and maps them into a shared space with an alignment matrix.
package embedding

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxLineSize bounds a single vector line; 300 dims of text fit in well
// under 16 KiB but some dumps carry 1000+ dims.
const maxLineSize = 1 << 20

// maxPrealloc caps the float32 values reserved from a header's counts.
const maxPrealloc = 1 << 28

// Space is a word to vector lookup for one language. All vectors share one
// dimensionality. Vectors returned by Vector alias internal storage and must
// not be modified.
type Space struct {
	dim   int
	index map[string]int
	data  []float32
}

// Dim returns the vector dimensionality.
func (s *Space) Dim() int { return s.dim }

// Len returns the number of words.
func (s *Space) Len() int { return len(s.index) }

// Contains reports whether word has a vector. The match is exact.
func (s *Space) Contains(word string) bool {
	_, ok := s.index[word]
	return ok
}

// Vector returns the vector of word, or nil when absent.
func (s *Space) Vector(word string) []float32 {
	row, ok := s.index[word]
	if !ok {
		return nil
	}
	return s.data[row*s.dim : (row+1)*s.dim]
}

// FromVectors builds a space from parallel slices.
func FromVectors(words []string, vectors [][]float32) (*Space, error) {
	if len(words) != len(vectors) {
		return nil, fmt.Errorf("%d words but %d vectors", len(words), len(vectors))
	}
	s := &Space{index: make(map[string]int, len(words))}
	for i, w := range words {
		if err := s.add(w, vectors[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// add stores v under word. A repeated word points at its latest vector.
func (s *Space) add(word string, v []float32) error {
	if s.dim == 0 {
		if len(v) == 0 {
			return fmt.Errorf("empty vector for %q", word)
		}
		s.dim = len(v)
	}
	if len(v) != s.dim {
		return fmt.Errorf("vector for %q has %d dims, want %d", word, len(v), s.dim)
	}
	s.index[word] = len(s.data) / s.dim
	s.data = append(s.data, v...)
	return nil
}

// Read parses the fastText text format: an optional "<count> <dim>" header
// line followed by one "<word> <v1> ... <vD>" line per word.
func Read(r io.Reader) (*Space, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	s := &Space{index: make(map[string]int)}
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && len(fields) == 2 {
			count, err1 := strconv.Atoi(fields[0])
			dim, err2 := strconv.Atoi(fields[1])
			if err1 == nil && err2 == nil {
				if count < 0 || dim <= 0 {
					return nil, fmt.Errorf("line 1: bad header %q", sc.Text())
				}
				s.dim = dim
				if count <= maxPrealloc/dim {
					s.index = make(map[string]int, count)
					s.data = make([]float32, 0, count*dim)
				}
				continue
			}
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: missing vector values", lineNo)
		}
		v := make([]float32, len(fields)-1)
		for i, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			v[i] = float32(x)
		}
		if err := s.add(fields[0], v); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads a vector file, decompressing .gz and .zst transparently.
func Load(path string) (*Space, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	s, err := Read(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s, nil
}
