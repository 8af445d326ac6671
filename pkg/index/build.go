package index

import (
	"fmt"

	"github.com/japaniel/lexgraph/pkg/ontology"
)

// Index holds the tables produced by the joint pass. It is not modified
// after Build returns.
type Index struct {
	languages   []string
	vocab       *Vocabulary
	synsets     []SynsetEntry
	byName      map[string]SynsetEntry
	memberships []Membership
}

// Stats accumulates the counters of one joint pass.
type Stats struct {
	// WordsResolved is the vocabulary size; WordsAttempted adds every
	// failed resolution, repeats included.
	WordsResolved  int `json:"words_resolved"`
	WordsAttempted int `json:"words_attempted"`
	OOV            int `json:"oov"`

	SynsetsLive  int `json:"synsets_live"`
	SynsetsTotal int `json:"synsets_total"`

	// SensesEmitted counts membership records; SensesAttempted counts every
	// lemma looked at in a configured language.
	SensesEmitted   int `json:"senses_emitted"`
	SensesAttempted int `json:"senses_attempted"`

	// Duplicates counts synsets enumerated again under a later part of
	// speech; they keep the id of their first visit.
	Duplicates int `json:"duplicates"`
}

// SynsetsDead is the number of synsets without any covered sense.
func (s Stats) SynsetsDead() int { return s.SynsetsTotal - s.SynsetsLive }

// FilterLanguages splits the configured languages into those g supports and
// those it does not, preserving order.
func FilterLanguages(g ontology.Graph, languages []string) (kept, unsupported []string) {
	for _, lang := range languages {
		if ontology.Supports(g, lang) {
			kept = append(kept, lang)
		} else {
			unsupported = append(unsupported, lang)
		}
	}
	return kept, unsupported
}

// Build runs the joint synset/vocabulary pass: parts of speech in
// ontology.PartsOfSpeech order, synsets in ontology order, languages in the
// given order, lemmas in ontology order. Every synset gets the next id when
// first visited; it becomes a DeadSynset when none of its lemmas resolve.
func Build(g ontology.Graph, spaces map[string]VectorSpace, languages []string) (*Index, Stats, error) {
	ix := &Index{
		languages: append([]string(nil), languages...),
		vocab:     NewVocabulary(spaces),
		byName:    make(map[string]SynsetEntry),
	}
	var st Stats

	for _, pos := range ontology.PartsOfSpeech {
		synsets, err := g.AllSynsets(pos)
		if err != nil {
			return nil, st, fmt.Errorf("list %q synsets: %w", pos, err)
		}
		for _, s := range synsets {
			name := s.Name()
			if _, seen := ix.byName[name]; seen {
				st.Duplicates++
				continue
			}
			id := len(ix.synsets) + 1

			var members []Sense
			for _, lang := range ix.languages {
				for _, lemma := range s.LemmaNames(lang) {
					st.SensesAttempted++
					vid, ok := ix.vocab.Resolve(lemma, lang)
					if !ok {
						continue
					}
					members = append(members, Sense{VocabID: vid, Key: Key{Word: lemma, Language: lang}})
					ix.memberships = append(ix.memberships, Membership{VocabID: vid, SynsetID: id})
					st.SensesEmitted++
				}
			}

			var e SynsetEntry
			if len(members) == 0 {
				e = &DeadSynset{id: id, name: name, pos: s.POS()}
			} else {
				e = &LiveSynset{id: id, name: name, pos: s.POS(), Members: members}
				st.SynsetsLive++
			}
			ix.synsets = append(ix.synsets, e)
			ix.byName[name] = e
		}
	}

	st.SynsetsTotal = len(ix.synsets)
	st.WordsResolved = ix.vocab.Len()
	st.OOV = len(ix.vocab.OOV())
	st.WordsAttempted = st.WordsResolved + st.OOV
	return ix, st, nil
}

// Languages returns the languages the pass traversed.
func (ix *Index) Languages() []string { return ix.languages }

// Vocabulary returns the vocabulary built by the pass.
func (ix *Index) Vocabulary() *Vocabulary { return ix.vocab }

// Synsets returns every visited synset in id order; Synsets()[i].ID() == i+1.
func (ix *Index) Synsets() []SynsetEntry { return ix.synsets }

// Synset looks a synset up by name.
func (ix *Index) Synset(name string) (SynsetEntry, bool) {
	e, ok := ix.byName[name]
	return e, ok
}

// Memberships returns the sense membership records in emission order.
func (ix *Index) Memberships() []Membership { return ix.memberships }

// LiveCount returns the number of live synsets.
func (ix *Index) LiveCount() int {
	n := 0
	for _, e := range ix.synsets {
		if IsLive(e) {
			n++
		}
	}
	return n
}
