package db

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/japaniel/lexgraph/pkg/index"
)

// ExportDataset replaces the dataset tables with the contents of ix and
// the given projections. Ids match the text dataset exactly.
func ExportDataset(conn *sql.DB, ix *index.Index, projections []*index.Projection, batchSize int) error {
	for _, table := range []string{"edges", "senses", "dataset_synsets", "vocabulary"} {
		if _, err := conn.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	bw := NewBatchWriter(conn, batchSize)
	submit := func(query string, args ...interface{}) error {
		return bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, query, args...)
			return err
		})
	}

	err := func() error {
		for _, e := range ix.Vocabulary().Entries() {
			if err := submit(`INSERT INTO vocabulary (id, word, language, vector) VALUES (?, ?, ?, ?)`,
				e.ID, e.Key.Word, e.Key.Language, EncodeVector(e.Vector)); err != nil {
				return err
			}
		}
		for _, s := range ix.Synsets() {
			live := 0
			if index.IsLive(s) {
				live = 1
			}
			if err := submit(`INSERT INTO dataset_synsets (id, name, pos, live) VALUES (?, ?, ?, ?)`,
				s.ID(), s.Name(), s.POS(), live); err != nil {
				return err
			}
		}
		for _, m := range ix.Memberships() {
			if err := submit(`INSERT INTO senses (vocabulary_id, synset_id) VALUES (?, ?)`, m.VocabID, m.SynsetID); err != nil {
				return err
			}
		}
		for _, p := range projections {
			for _, e := range p.Edges {
				if err := submit(`INSERT INTO edges (relation, source_id, target_id) VALUES (?, ?, ?)`,
					p.Relation.Name, e.Source, e.Target); err != nil {
					return err
				}
			}
		}
		return nil
	}()
	if cerr := bw.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export dataset: %w", err)
	}
	return nil
}

// EncodeVector packs v as little-endian float32s.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob of %d bytes is not a float32 array", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
