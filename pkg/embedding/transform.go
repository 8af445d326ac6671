package embedding

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Matrix is a dense row-major alignment matrix.
type Matrix struct {
	Rows, Cols int
	Data       []float64
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.Data[i*m.Cols+j] }

// LoadMatrix reads a whitespace separated matrix, one row per line. Blank
// lines and lines starting with '#' are skipped.
func LoadMatrix(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	m := &Matrix{}
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if m.Rows == 0 {
			m.Cols = len(fields)
		} else if len(fields) != m.Cols {
			return nil, fmt.Errorf("%s line %d: %d columns, want %d", path, lineNo, len(fields), m.Cols)
		}
		for _, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
			}
			m.Data = append(m.Data, x)
		}
		m.Rows++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if m.Rows == 0 {
		return nil, fmt.Errorf("%s: empty matrix", path)
	}
	return m, nil
}

// ApplyTransform maps every vector v to v·M in place. M must have one row
// per dimension of s; the space takes M's column count as its new
// dimensionality.
func (s *Space) ApplyTransform(m *Matrix) error {
	if s.dim == 0 {
		return fmt.Errorf("space has no dimensionality")
	}
	if m.Rows != s.dim {
		return fmt.Errorf("transform has %d rows, space has %d dims", m.Rows, s.dim)
	}
	n := len(s.data) / s.dim
	if n == 0 {
		s.dim = m.Cols
		return nil
	}
	out := make([]float32, n*m.Cols)
	row := make([]float64, m.Cols)
	for r := 0; r < n; r++ {
		v := s.data[r*s.dim : (r+1)*s.dim]
		for j := range row {
			row[j] = 0
		}
		for i, x := range v {
			if x == 0 {
				continue
			}
			xi := float64(x)
			mi := m.Data[i*m.Cols : (i+1)*m.Cols]
			for j, w := range mi {
				row[j] += xi * w
			}
		}
		dst := out[r*m.Cols : (r+1)*m.Cols]
		for j, x := range row {
			dst[j] = float32(x)
		}
	}
	s.data = out
	s.dim = m.Cols
	return nil
}
