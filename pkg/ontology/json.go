package ontology

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Record is one synset in an ontology dump.
type Record struct {
	Name string `json:"name"`
	POS  string `json:"pos"`
	// AlsoListed names further parts of speech the synset is enumerated
	// under, e.g. ["a"] for an adjective satellite.
	AlsoListed []string            `json:"also_listed,omitempty"`
	Lemmas     map[string][]string `json:"lemmas,omitempty"`
	Relations  map[string][]string `json:"relations,omitempty"`
}

// Dump is the object form of an ontology file.
type Dump struct {
	Languages []string `json:"languages"`
	Synsets   []Record `json:"synsets"`
}

// LoadJSON reads an ontology dump. The file may hold a Dump object or a bare
// array of records; in the latter case the supported languages are the ones
// any lemma uses.
func LoadJSON(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("ontology %s is empty", path)
	}
	switch trimmed[0] {
	case '{':
		var dump Dump
		if err := json.Unmarshal(data, &dump); err != nil {
			return nil, fmt.Errorf("failed to parse ontology object: %w", err)
		}
		return FromRecords(dump.Languages, dump.Synsets)
	case '[':
		var records []Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse ontology array: %w", err)
		}
		return FromRecords(nil, records)
	default:
		return nil, fmt.Errorf("ontology %s is neither a JSON object nor an array", path)
	}
}

// FromRecords builds a graph from records in traversal order. Extra
// listings are appended when their record is read. When languages is empty
// it is derived from the lemmas, sorted.
func FromRecords(languages []string, records []Record) (*Memory, error) {
	b := NewBuilder(languages...)
	derived := make(map[string]bool)
	for _, r := range records {
		if err := b.AddSynset(r.Name, r.POS); err != nil {
			return nil, err
		}
		for _, pos := range r.AlsoListed {
			if err := b.ListUnder(r.Name, pos); err != nil {
				return nil, err
			}
		}
		for _, lang := range sortedKeys(r.Lemmas) {
			derived[lang] = true
			for _, lemma := range r.Lemmas[lang] {
				if err := b.AddLemma(r.Name, lang, lemma); err != nil {
					return nil, err
				}
			}
		}
		for _, symbol := range sortedKeys(r.Relations) {
			for _, target := range r.Relations[symbol] {
				if err := b.AddRelation(r.Name, symbol, target); err != nil {
					return nil, err
				}
			}
		}
	}
	if len(languages) == 0 {
		for _, lang := range sortedKeys(derived) {
			b.AddLanguage(lang)
		}
	}
	return b.Graph(), nil
}

// Records flattens m back into records in insertion order.
func (m *Memory) Records() []Record {
	extra := make(map[*node][]string)
	for _, pos := range m.posOrder() {
		for _, n := range m.byPOS[pos] {
			if n.pos != pos {
				extra[n] = append(extra[n], pos)
			}
		}
	}

	out := make([]Record, 0, len(m.order))
	for _, n := range m.order {
		r := Record{Name: n.name, POS: n.pos, AlsoListed: extra[n]}
		if len(n.lemmas) > 0 {
			r.Lemmas = n.lemmas
		}
		if len(n.relations) > 0 {
			r.Relations = n.relations
		}
		out = append(out, r)
	}
	return out
}

// posOrder is PartsOfSpeech followed by any other tag in use, sorted.
func (m *Memory) posOrder() []string {
	order := append([]string(nil), PartsOfSpeech...)
	known := make(map[string]bool, len(order))
	for _, p := range order {
		known[p] = true
	}
	var extra []string
	for p := range m.byPOS {
		if !known[p] {
			extra = append(extra, p)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
