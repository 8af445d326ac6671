// Package index reconciles an ontology with per-language vector spaces into
// densely numbered tables: a vocabulary of covered (word, language) pairs, a
// synset table in traversal order with explicit liveness, sense membership
// records, and relation edges re-expressed in synset ids.
package index

// VectorSpace is the per-language embedding lookup consumed by the
// vocabulary.
type VectorSpace interface {
	Contains(word string) bool
	Vector(word string) []float32
}

// Key identifies a sense realization: a word within one language.
type Key struct {
	Word     string
	Language string
}

// String renders k as "<word>:<language>".
func (k Key) String() string { return k.Word + ":" + k.Language }

// Entry is one vocabulary row.
type Entry struct {
	ID     int
	Key    Key
	Vector []float32
}

// Vocabulary assigns dense 1-based ids to covered keys in first-seen order.
// Ids are never reassigned and entries never removed.
type Vocabulary struct {
	spaces  map[string]VectorSpace
	ids     map[Key]int
	entries []Entry
	oov     []Key
}

// NewVocabulary returns an empty vocabulary over the given spaces, keyed by
// language code.
func NewVocabulary(spaces map[string]VectorSpace) *Vocabulary {
	return &Vocabulary{
		spaces: spaces,
		ids:    make(map[Key]int),
	}
}

// Resolve returns the id of (word, lang), allocating it on first success.
// A word the language's space does not contain, verbatim, is tallied as
// out-of-vocabulary and yields false; no normalization is attempted.
func (v *Vocabulary) Resolve(word, lang string) (int, bool) {
	k := Key{Word: word, Language: lang}
	if id, ok := v.ids[k]; ok {
		return id, true
	}
	space, ok := v.spaces[lang]
	if !ok || !space.Contains(word) {
		v.oov = append(v.oov, k)
		return 0, false
	}
	id := len(v.entries) + 1
	v.ids[k] = id
	v.entries = append(v.entries, Entry{ID: id, Key: k, Vector: space.Vector(word)})
	return id, true
}

// Lookup returns the id of k without allocating.
func (v *Vocabulary) Lookup(k Key) (int, bool) {
	id, ok := v.ids[k]
	return id, ok
}

// Len returns the number of allocated ids.
func (v *Vocabulary) Len() int { return len(v.entries) }

// Entries returns the vocabulary in id order; Entries()[i].ID == i+1.
func (v *Vocabulary) Entries() []Entry { return v.entries }

// OOV returns every failed resolution in attempt order, repeats included.
func (v *Vocabulary) OOV() []Key { return v.oov }
