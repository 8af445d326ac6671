package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/japaniel/lexgraph/pkg/db"
	"github.com/japaniel/lexgraph/pkg/ontology"
)

// LoadOntology reads a JSON dump, or a SQLite database written by
// "lexgraph import" when path ends in .db or .sqlite.
func LoadOntology(path string) (*ontology.Memory, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		// db.Open would create a missing file.
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		conn, err := db.Open(path)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		g, err := db.LoadGraph(conn)
		if err != nil {
			return nil, fmt.Errorf("load ontology from %s: %w", path, err)
		}
		return g, nil
	default:
		g, err := ontology.LoadJSON(path)
		if err != nil {
			return nil, fmt.Errorf("load ontology from %s: %w", path, err)
		}
		return g, nil
	}
}
