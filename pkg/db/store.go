package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/japaniel/lexgraph/pkg/ontology"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// CreateOrGetSynset returns the id of an existing synset or inserts it.
// The part of speech of an existing synset is left unchanged.
func CreateOrGetSynset(db DBExecutor, name, pos string) (int64, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, fmt.Errorf("synset name must be non-empty")
	}

	var id int64
	query := `INSERT INTO synsets (name, pos) VALUES (?, ?)
			  ON CONFLICT(name) DO UPDATE SET pos = synsets.pos
			  RETURNING id`
	if err := db.QueryRow(query, trimmed, pos).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert synset: %w", err)
	}
	return id, nil
}

// AddListing enumerates a synset under pos. Repeats are ignored.
func AddListing(db DBExecutor, synsetID int64, pos string) error {
	if synsetID <= 0 {
		return fmt.Errorf("synsetID must be positive")
	}
	_, err := db.Exec(`INSERT OR IGNORE INTO listings (synset_id, pos) VALUES (?, ?)`, synsetID, pos)
	return err
}

// AddLemma appends a lemma to a synset.
func AddLemma(db DBExecutor, synsetID int64, language, name string) error {
	if synsetID <= 0 {
		return fmt.Errorf("synsetID must be positive")
	}
	_, err := db.Exec(`INSERT INTO lemmas (synset_id, language, name) VALUES (?, ?, ?)`, synsetID, language, name)
	return err
}

// AddRelation appends a typed edge. The target is stored by name so that
// edges to synsets absent from the store survive a round trip.
func AddRelation(db DBExecutor, sourceID int64, symbol, target string) error {
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	_, err := db.Exec(`INSERT INTO relations (source_id, symbol, target_name) VALUES (?, ?, ?)`, sourceID, symbol, target)
	return err
}

// SetLanguages replaces the supported language list.
func SetLanguages(db DBExecutor, languages []string) error {
	if _, err := db.Exec(`DELETE FROM languages`); err != nil {
		return err
	}
	for i, lang := range languages {
		if _, err := db.Exec(`INSERT INTO languages (code, ordinal) VALUES (?, ?)`, lang, i); err != nil {
			return fmt.Errorf("insert language %s: %w", lang, err)
		}
	}
	return nil
}

// LoadGraph reads the stored ontology into memory, preserving listing,
// lemma and relation order.
func LoadGraph(db DBExecutor) (*ontology.Memory, error) {
	var languages []string
	rows, err := db.Query(`SELECT code FROM languages ORDER BY ordinal`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			rows.Close()
			return nil, err
		}
		languages = append(languages, code)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	b := ontology.NewBuilder(languages...)
	added := make(map[string]bool)

	err = eachRow(db, `SELECT s.name, s.pos, l.pos FROM listings l JOIN synsets s ON s.id = l.synset_id ORDER BY l.id`,
		func(rows *sql.Rows) error {
			var name, pos, listed string
			if err := rows.Scan(&name, &pos, &listed); err != nil {
				return err
			}
			if !added[name] {
				added[name] = true
				if err := b.AddSynset(name, pos); err != nil {
					return err
				}
			}
			if listed != pos {
				return b.ListUnder(name, listed)
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load synsets: %w", err)
	}

	err = eachRow(db, `SELECT s.name, l.language, l.name FROM lemmas l JOIN synsets s ON s.id = l.synset_id ORDER BY l.id`,
		func(rows *sql.Rows) error {
			var synset, lang, name string
			if err := rows.Scan(&synset, &lang, &name); err != nil {
				return err
			}
			return b.AddLemma(synset, lang, name)
		})
	if err != nil {
		return nil, fmt.Errorf("load lemmas: %w", err)
	}

	err = eachRow(db, `SELECT s.name, r.symbol, r.target_name FROM relations r JOIN synsets s ON s.id = r.source_id ORDER BY r.id`,
		func(rows *sql.Rows) error {
			var source, symbol, target string
			if err := rows.Scan(&source, &symbol, &target); err != nil {
				return err
			}
			return b.AddRelation(source, symbol, target)
		})
	if err != nil {
		return nil, fmt.Errorf("load relations: %w", err)
	}
	return b.Graph(), nil
}

func eachRow(db DBExecutor, query string, fn func(*sql.Rows) error) error {
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
