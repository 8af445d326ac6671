package index

import (
	"errors"
	"fmt"
	"sort"

	"github.com/japaniel/lexgraph/pkg/ontology"
)

var (
	// ErrUnknownRelation is returned for a relation symbol outside Relations.
	ErrUnknownRelation = errors.New("unknown relation symbol")
	// ErrUnreachableEndpoint means the ontology named a synset the joint
	// pass never visited.
	ErrUnreachableEndpoint = errors.New("relation endpoint missing from synset index")
)

// Relation is a typed synset relation and its report name.
type Relation struct {
	Symbol string
	Name   string
}

// Relations is the fixed symbol table, in extraction order.
var Relations = []Relation{
	{Symbol: "@", Name: "hypernym"},
	{Symbol: "&", Name: "similar"},
	{Symbol: "$", Name: "verbGroup"},
	{Symbol: "!", Name: "antonym"},
}

// LookupRelation returns the relation for symbol.
func LookupRelation(symbol string) (Relation, error) {
	for _, r := range Relations {
		if r.Symbol == symbol {
			return r, nil
		}
	}
	return Relation{}, fmt.Errorf("%w: %q", ErrUnknownRelation, symbol)
}

// IntegrityError reports a relation endpoint without a synset id.
type IntegrityError struct {
	Relation string
	Source   string
	Target   string
	// Missing is the endpoint name that has no id.
	Missing string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s edge %s -> %s: synset %s was never indexed", e.Relation, e.Source, e.Target, e.Missing)
}

func (e *IntegrityError) Unwrap() error { return ErrUnreachableEndpoint }

// Edge is a relation edge in synset ids.
type Edge struct {
	Source int
	Target int
}

// Projection is the outcome of projecting one relation.
type Projection struct {
	Relation Relation
	// Edges holds the surviving edges in traversal order.
	Edges []Edge
	// Reach counts related synsets visited per target part of speech,
	// including those dropped for deadness.
	Reach   map[string]int
	Visited int
	Dropped int
}

// ReachOrder lists the keys of Reach: known parts of speech first in
// traversal order, then any other tag sorted.
func (p *Projection) ReachOrder() []string {
	var out []string
	known := make(map[string]bool)
	for _, pos := range ontology.PartsOfSpeech {
		known[pos] = true
		if _, ok := p.Reach[pos]; ok {
			out = append(out, pos)
		}
	}
	var extra []string
	for pos := range p.Reach {
		if !known[pos] {
			extra = append(extra, pos)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Project walks every synset of g in the joint pass order and re-expresses
// its symbol edges in ix's ids, keeping only edges whose endpoints are both
// live.
func Project(ix *Index, g ontology.Graph, symbol string) (*Projection, error) {
	rel, err := LookupRelation(symbol)
	if err != nil {
		return nil, err
	}
	p := &Projection{Relation: rel, Reach: make(map[string]int)}
	seen := make(map[string]bool, len(ix.synsets))

	for _, pos := range ontology.PartsOfSpeech {
		synsets, err := g.AllSynsets(pos)
		if err != nil {
			return nil, fmt.Errorf("list %q synsets: %w", pos, err)
		}
		for _, s := range synsets {
			name := s.Name()
			if seen[name] {
				continue
			}
			seen[name] = true

			related := s.Related(symbol)
			if len(related) == 0 {
				continue
			}
			src, ok := ix.Synset(name)
			if !ok {
				return nil, &IntegrityError{Relation: rel.Name, Source: name, Target: related[0].Name(), Missing: name}
			}
			for _, t := range related {
				p.Reach[t.POS()]++
				p.Visited++
				dst, ok := ix.Synset(t.Name())
				if !ok {
					return nil, &IntegrityError{Relation: rel.Name, Source: name, Target: t.Name(), Missing: t.Name()}
				}
				if IsLive(src) && IsLive(dst) {
					p.Edges = append(p.Edges, Edge{Source: src.ID(), Target: dst.ID()})
				} else {
					p.Dropped++
				}
			}
		}
	}
	return p, nil
}

// ProjectAll validates every symbol before projecting any of them.
func ProjectAll(ix *Index, g ontology.Graph, symbols []string) ([]*Projection, error) {
	for _, sym := range symbols {
		if _, err := LookupRelation(sym); err != nil {
			return nil, err
		}
	}
	out := make([]*Projection, 0, len(symbols))
	for _, sym := range symbols {
		p, err := Project(ix, g, sym)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Symbols returns the symbols of Relations in order.
func Symbols() []string {
	out := make([]string, len(Relations))
	for i, r := range Relations {
		out[i] = r.Symbol
	}
	return out
}
