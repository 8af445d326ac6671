// Package ontology describes the read-only lexical ontology consumed by the
// extractor: synsets grouped by part of speech, their lemmas per language and
// their typed relations to other synsets.
package ontology

// PartsOfSpeech is the fixed traversal order over parts of speech.
// Adjective satellites ("s") follow plain adjectives.
var PartsOfSpeech = []string{"a", "s", "r", "n", "v"}

// Graph is the query surface of a lexical ontology.
type Graph interface {
	// Languages lists the language codes the ontology has lemmas for.
	Languages() []string
	// AllSynsets returns the synsets of one part of speech in the
	// ontology's native order.
	AllSynsets(pos string) ([]Synset, error)
}

// Synset is a single ontology node.
type Synset interface {
	Name() string
	POS() string
	// LemmaNames returns the lemma names realizing this synset in lang,
	// in ontology order. Duplicates are returned as stored.
	LemmaNames(lang string) []string
	// Related returns the synsets reached through the relation symbol.
	Related(symbol string) []Synset
}

// Supports reports whether lang is one of g's languages.
func Supports(g Graph, lang string) bool {
	for _, l := range g.Languages() {
		if l == lang {
			return true
		}
	}
	return false
}
