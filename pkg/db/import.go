package db

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"

	"github.com/japaniel/lexgraph/pkg/ontology"
)

// ImportStats counts what ImportGraph stored.
type ImportStats struct {
	Synsets   int
	Listings  int
	Lemmas    int
	Relations int
}

// ImportGraph stores m, one record per write, committing every batchSize
// records. Re-importing a synset keeps its id and appends its lemmas and
// relations again; import into a fresh database.
func ImportGraph(conn *sql.DB, m *ontology.Memory, batchSize int, onCommit func(batches, items int)) (ImportStats, error) {
	var st ImportStats
	if err := SetLanguages(conn, m.Languages()); err != nil {
		return st, fmt.Errorf("store languages: %w", err)
	}

	bw := NewBatchWriter(conn, batchSize)
	bw.OnCommit = onCommit
	for _, r := range m.Records() {
		r := r
		err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			return importRecord(tx, r)
		})
		if err != nil {
			bw.Close()
			return st, err
		}
		st.Synsets++
		st.Listings += 1 + len(r.AlsoListed)
		for _, lemmas := range r.Lemmas {
			st.Lemmas += len(lemmas)
		}
		for _, targets := range r.Relations {
			st.Relations += len(targets)
		}
	}
	if err := bw.Close(); err != nil {
		return ImportStats{}, err
	}
	return st, nil
}

func importRecord(tx *sql.Tx, r ontology.Record) error {
	id, err := CreateOrGetSynset(tx, r.Name, r.POS)
	if err != nil {
		return err
	}
	for _, pos := range append([]string{r.POS}, r.AlsoListed...) {
		if err := AddListing(tx, id, pos); err != nil {
			return fmt.Errorf("list %s under %s: %w", r.Name, pos, err)
		}
	}
	for _, lang := range slices.Sorted(maps.Keys(r.Lemmas)) {
		for _, lemma := range r.Lemmas[lang] {
			if err := AddLemma(tx, id, lang, lemma); err != nil {
				return fmt.Errorf("lemma %s of %s: %w", lemma, r.Name, err)
			}
		}
	}
	for _, symbol := range slices.Sorted(maps.Keys(r.Relations)) {
		for _, target := range r.Relations[symbol] {
			if err := AddRelation(tx, id, symbol, target); err != nil {
				return fmt.Errorf("relation %s %s %s: %w", r.Name, symbol, target, err)
			}
		}
	}
	return nil
}
