package ontology

import (
	"fmt"
	"strings"
)

// Memory is an in-memory Graph. Build one with a Builder.
type Memory struct {
	languages []string
	byPOS     map[string][]*node
	byName    map[string]*node
	order     []*node
}

type node struct {
	g         *Memory
	name      string
	pos       string
	lemmas    map[string][]string
	relations map[string][]string
}

func (n *node) Name() string { return n.name }
func (n *node) POS() string  { return n.pos }

func (n *node) LemmaNames(lang string) []string {
	return n.lemmas[lang]
}

// Related resolves target names lazily. A target that was never added as a
// synset is still returned, as a bare node carrying only its name, so that
// consumers can detect the dangling reference themselves.
func (n *node) Related(symbol string) []Synset {
	names := n.relations[symbol]
	if len(names) == 0 {
		return nil
	}
	out := make([]Synset, 0, len(names))
	for _, name := range names {
		if t, ok := n.g.byName[name]; ok {
			out = append(out, t)
			continue
		}
		out = append(out, &node{g: n.g, name: name, pos: posFromName(name)})
	}
	return out
}

// Languages implements Graph.
func (m *Memory) Languages() []string { return m.languages }

// AllSynsets implements Graph.
func (m *Memory) AllSynsets(pos string) ([]Synset, error) {
	nodes := m.byPOS[pos]
	out := make([]Synset, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out, nil
}

// Len returns the number of distinct synsets held.
func (m *Memory) Len() int { return len(m.byName) }

// Builder accumulates synsets, lemmas and relations in insertion order.
type Builder struct {
	m *Memory
}

// NewBuilder returns a Builder for a graph supporting the given languages.
func NewBuilder(languages ...string) *Builder {
	return &Builder{m: &Memory{
		languages: append([]string(nil), languages...),
		byPOS:     make(map[string][]*node),
		byName:    make(map[string]*node),
	}}
}

// AddLanguage registers an extra supported language; repeats are ignored.
func (b *Builder) AddLanguage(lang string) {
	for _, l := range b.m.languages {
		if l == lang {
			return
		}
	}
	b.m.languages = append(b.m.languages, lang)
}

// AddSynset appends a new synset of the given pos to the traversal of pos.
func (b *Builder) AddSynset(name, pos string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("synset name must be non-empty")
	}
	if _, ok := b.m.byName[name]; ok {
		return fmt.Errorf("duplicate synset %s", name)
	}
	n := &node{
		g:         b.m,
		name:      name,
		pos:       pos,
		lemmas:    make(map[string][]string),
		relations: make(map[string][]string),
	}
	b.m.byName[name] = n
	b.m.byPOS[pos] = append(b.m.byPOS[pos], n)
	b.m.order = append(b.m.order, n)
	return nil
}

// ListUnder additionally enumerates an existing synset under another part
// of speech, the way WordNet lists adjective satellites under "a" as well.
func (b *Builder) ListUnder(name, pos string) error {
	n, ok := b.m.byName[name]
	if !ok {
		return fmt.Errorf("unknown synset %s", name)
	}
	for _, other := range b.m.byPOS[pos] {
		if other == n {
			return fmt.Errorf("synset %s already listed under %q", name, pos)
		}
	}
	b.m.byPOS[pos] = append(b.m.byPOS[pos], n)
	return nil
}

// AddLemma appends a lemma of lang to an existing synset.
func (b *Builder) AddLemma(synset, lang, lemma string) error {
	n, ok := b.m.byName[synset]
	if !ok {
		return fmt.Errorf("unknown synset %s", synset)
	}
	n.lemmas[lang] = append(n.lemmas[lang], lemma)
	return nil
}

// AddRelation appends a typed edge. The target need not exist yet.
func (b *Builder) AddRelation(source, symbol, target string) error {
	n, ok := b.m.byName[source]
	if !ok {
		return fmt.Errorf("unknown synset %s", source)
	}
	n.relations[symbol] = append(n.relations[symbol], target)
	return nil
}

// Graph returns the built graph. The Builder must not be used afterwards.
func (b *Builder) Graph() *Memory { return b.m }

// posFromName extracts the pos tag of a WordNet-style name ("dog.n.01").
func posFromName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-2]
}
