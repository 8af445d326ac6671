package index

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/lexgraph/pkg/ontology"
)

type mapSpace map[string][]float32

func (m mapSpace) Contains(w string) bool {
	_, ok := m[w]
	return ok
}

func (m mapSpace) Vector(w string) []float32 { return m[w] }

func spacesFor(words map[string][]string) map[string]VectorSpace {
	out := make(map[string]VectorSpace)
	for lang, ws := range words {
		s := mapSpace{}
		for i, w := range ws {
			s[w] = []float32{float32(i), 1}
		}
		out[lang] = s
	}
	return out
}

// dogGraph is the two-synset example: S1 covered in two languages, S2 not
// covered at all, and a hypernym edge S1 -> S2.
func dogGraph(t *testing.T) *ontology.Memory {
	t.Helper()
	b := ontology.NewBuilder("eng", "fra")
	require.NoError(t, b.AddSynset("dog.n.01", "n"))
	require.NoError(t, b.AddSynset("xyzzy.n.01", "n"))
	require.NoError(t, b.AddLemma("dog.n.01", "eng", "dog"))
	require.NoError(t, b.AddLemma("dog.n.01", "fra", "chien"))
	require.NoError(t, b.AddLemma("xyzzy.n.01", "eng", "xyzzy"))
	require.NoError(t, b.AddRelation("dog.n.01", "@", "xyzzy.n.01"))
	return b.Graph()
}

func TestDeadTargetScenario(t *testing.T) {
	g := dogGraph(t)
	spaces := spacesFor(map[string][]string{"eng": {"dog"}, "fra": {"chien"}})

	ix, st, err := Build(g, spaces, []string{"eng", "fra"})
	require.NoError(t, err)

	entries := ix.Vocabulary().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{ID: 1, Key: Key{"dog", "eng"}, Vector: []float32{0, 1}}, entries[0])
	assert.Equal(t, 2, entries[1].ID)
	assert.Equal(t, "chien:fra", entries[1].Key.String())

	s1, ok := ix.Synset("dog.n.01")
	require.True(t, ok)
	require.IsType(t, &LiveSynset{}, s1)
	assert.Equal(t, 1, s1.ID())
	assert.Len(t, s1.(*LiveSynset).Members, 2)

	s2, ok := ix.Synset("xyzzy.n.01")
	require.True(t, ok)
	require.IsType(t, &DeadSynset{}, s2)
	assert.Equal(t, 2, s2.ID())

	assert.Equal(t, []Membership{{1, 1}, {2, 1}}, ix.Memberships())
	assert.Equal(t, Stats{
		WordsResolved: 2, WordsAttempted: 3, OOV: 1,
		SynsetsLive: 1, SynsetsTotal: 2,
		SensesEmitted: 2, SensesAttempted: 3,
	}, st)
	assert.Equal(t, 1, st.SynsetsDead())

	p, err := Project(ix, g, "@")
	require.NoError(t, err)
	assert.Empty(t, p.Edges)
	assert.Equal(t, 1, p.Dropped)
	assert.Equal(t, map[string]int{"n": 1}, p.Reach)
	assert.Equal(t, "hypernym", p.Relation.Name)
}

func TestVocabularyReusesIds(t *testing.T) {
	v := NewVocabulary(spacesFor(map[string][]string{"eng": {"bank", "shore"}}))

	id, ok := v.Resolve("bank", "eng")
	require.True(t, ok)
	assert.Equal(t, 1, id)

	_, ok = v.Resolve("Bank", "eng")
	assert.False(t, ok, "lookup must be exact")
	_, ok = v.Resolve("bank", "fra")
	assert.False(t, ok, "language without a space is out of vocabulary")

	id, ok = v.Resolve("shore", "eng")
	require.True(t, ok)
	assert.Equal(t, 2, id)

	id, ok = v.Resolve("bank", "eng")
	require.True(t, ok)
	assert.Equal(t, 1, id)

	assert.Equal(t, 2, v.Len())
	assert.Equal(t, []Key{{"Bank", "eng"}, {"bank", "fra"}}, v.OOV())
	got, ok := v.Lookup(Key{"shore", "eng"})
	assert.True(t, ok)
	assert.Equal(t, 2, got)
}

// wideGraph exercises every part of speech, a word shared by two synsets
// and an adjective satellite listed under "a" as well.
func wideGraph(t *testing.T) *ontology.Memory {
	t.Helper()
	b := ontology.NewBuilder("eng", "fra", "jpn")
	add := func(name, pos string, lemmas map[string][]string) {
		require.NoError(t, b.AddSynset(name, pos))
		for _, lang := range []string{"eng", "fra", "jpn"} {
			for _, l := range lemmas[lang] {
				require.NoError(t, b.AddLemma(name, lang, l))
			}
		}
	}
	add("bank.n.01", "n", map[string][]string{"eng": {"bank"}, "fra": {"rive"}})
	add("bank.n.02", "n", map[string][]string{"eng": {"bank", "depository"}, "fra": {"banque"}, "jpn": {"銀行"}})
	add("nothing.n.01", "n", map[string][]string{"eng": {"zzz"}})
	add("run.v.01", "v", map[string][]string{"eng": {"run"}, "fra": {"courir"}, "jpn": {"走る"}})
	add("fast.a.01", "a", map[string][]string{"eng": {"fast"}})
	add("quick.s.01", "s", map[string][]string{"eng": {"quick"}, "fra": {"rapide"}})
	require.NoError(t, b.ListUnder("quick.s.01", "a"))
	add("quickly.r.01", "r", map[string][]string{"eng": {"quickly"}, "fra": {"vite"}})
	add("slow.a.01", "a", map[string][]string{"eng": {"slow"}})

	require.NoError(t, b.AddRelation("bank.n.02", "@", "bank.n.01"))
	require.NoError(t, b.AddRelation("bank.n.01", "@", "nothing.n.01"))
	require.NoError(t, b.AddRelation("fast.a.01", "!", "slow.a.01"))
	require.NoError(t, b.AddRelation("quick.s.01", "&", "fast.a.01"))
	require.NoError(t, b.AddRelation("fast.a.01", "&", "quick.s.01"))
	require.NoError(t, b.AddRelation("run.v.01", "$", "run.v.01"))
	return b.Graph()
}

func wideSpaces() map[string]VectorSpace {
	return spacesFor(map[string][]string{
		"eng": {"bank", "depository", "run", "fast", "quick", "quickly"},
		"fra": {"rive", "banque", "courir", "rapide", "vite"},
		"jpn": {"銀行"},
	})
}

func TestIdsAreDenseAndTraversalOrdered(t *testing.T) {
	g := wideGraph(t)
	ix, st, err := Build(g, wideSpaces(), []string{"eng", "fra", "jpn"})
	require.NoError(t, err)

	var order []string
	for i, e := range ix.Synsets() {
		assert.Equal(t, i+1, e.ID())
		order = append(order, e.Name())
	}
	// a, s, r, n, v; the satellite is listed under "a" and keeps that id.
	assert.Equal(t, []string{
		"fast.a.01", "quick.s.01", "slow.a.01",
		"quickly.r.01",
		"bank.n.01", "bank.n.02", "nothing.n.01",
		"run.v.01",
	}, order)
	assert.Equal(t, 1, st.Duplicates)
	assert.Equal(t, 8, st.SynsetsTotal)

	seen := make(map[Key]bool)
	for i, e := range ix.Vocabulary().Entries() {
		assert.Equal(t, i+1, e.ID)
		assert.False(t, seen[e.Key], "duplicate key %s", e.Key)
		seen[e.Key] = true
	}
	// "bank" appears in two synsets but holds one id.
	assert.Equal(t, 12, ix.Vocabulary().Len())
	assert.Equal(t, 13, st.SensesEmitted)
	assert.Equal(t, 3, st.OOV)
}

func TestDeadIffNoLemmaResolves(t *testing.T) {
	g := wideGraph(t)
	ix, st, err := Build(g, wideSpaces(), []string{"eng", "fra", "jpn"})
	require.NoError(t, err)

	for _, e := range ix.Synsets() {
		switch s := e.(type) {
		case *LiveSynset:
			assert.NotEmpty(t, s.Members)
		case *DeadSynset:
			assert.Contains(t, []string{"slow.a.01", "nothing.n.01"}, s.Name())
		}
	}
	assert.Equal(t, 6, st.SynsetsLive)
	assert.Equal(t, 6, ix.LiveCount())

	// Memberships only reference live synsets and allocated words.
	for _, m := range ix.Memberships() {
		require.True(t, m.SynsetID >= 1 && m.SynsetID <= len(ix.Synsets()))
		assert.True(t, IsLive(ix.Synsets()[m.SynsetID-1]))
		assert.True(t, m.VocabID >= 1 && m.VocabID <= ix.Vocabulary().Len())
	}
}

func TestOOVDoesNotBlockOtherLemmas(t *testing.T) {
	b := ontology.NewBuilder("eng", "fra")
	require.NoError(t, b.AddSynset("car.n.01", "n"))
	require.NoError(t, b.AddLemma("car.n.01", "eng", "automobile_xx"))
	require.NoError(t, b.AddLemma("car.n.01", "eng", "car"))
	require.NoError(t, b.AddLemma("car.n.01", "fra", "voiture_xx"))

	ix, st, err := Build(b.Graph(), spacesFor(map[string][]string{"eng": {"car"}, "fra": {}}), []string{"eng", "fra"})
	require.NoError(t, err)
	assert.Equal(t, 1, ix.LiveCount())
	assert.Equal(t, 2, st.OOV)
	assert.Equal(t, 3, st.WordsAttempted)
}

func TestProjectionKeepsOnlyLiveEdges(t *testing.T) {
	g := wideGraph(t)
	ix, _, err := Build(g, wideSpaces(), []string{"eng", "fra", "jpn"})
	require.NoError(t, err)

	ps, err := ProjectAll(ix, g, Symbols())
	require.NoError(t, err)
	require.Len(t, ps, 4)

	byName := make(map[string]*Projection)
	for _, p := range ps {
		byName[p.Relation.Name] = p
		for _, e := range p.Edges {
			assert.True(t, IsLive(ix.Synsets()[e.Source-1]))
			assert.True(t, IsLive(ix.Synsets()[e.Target-1]))
		}
	}

	assert.Equal(t, []Edge{{Source: 6, Target: 5}}, byName["hypernym"].Edges)
	assert.Equal(t, 1, byName["hypernym"].Dropped)
	assert.Equal(t, []Edge{{1, 2}, {2, 1}}, byName["similar"].Edges)
	assert.Equal(t, map[string]int{"a": 1, "s": 1}, byName["similar"].Reach)
	assert.Equal(t, []string{"a", "s"}, byName["similar"].ReachOrder())
	assert.Equal(t, []Edge{{8, 8}}, byName["verbGroup"].Edges)
	assert.Empty(t, byName["antonym"].Edges)
	assert.Equal(t, 1, byName["antonym"].Visited)
}

func TestUnknownRelationFailsBeforeTraversal(t *testing.T) {
	g := &countingGraph{Graph: dogGraph(t)}
	ix, _, err := Build(g, spacesFor(map[string][]string{"eng": {"dog"}}), []string{"eng"})
	require.NoError(t, err)

	g.calls = 0
	_, err = ProjectAll(ix, g, []string{"@", "%"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRelation))
	assert.Zero(t, g.calls)
}

func TestUnreachableEndpointAborts(t *testing.T) {
	b := ontology.NewBuilder("eng")
	require.NoError(t, b.AddSynset("dog.n.01", "n"))
	require.NoError(t, b.AddLemma("dog.n.01", "eng", "dog"))
	require.NoError(t, b.AddRelation("dog.n.01", "@", "phantom.n.09"))
	g := b.Graph()

	ix, _, err := Build(g, spacesFor(map[string][]string{"eng": {"dog"}}), []string{"eng"})
	require.NoError(t, err)

	_, err = Project(ix, g, "@")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachableEndpoint))
	var ie *IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "phantom.n.09", ie.Missing)
}

func TestBuildIsDeterministic(t *testing.T) {
	g := wideGraph(t)
	langs := []string{"jpn", "eng", "fra"}
	ix1, st1, err := Build(g, wideSpaces(), langs)
	require.NoError(t, err)
	ix2, st2, err := Build(g, wideSpaces(), langs)
	require.NoError(t, err)

	assert.Equal(t, st1, st2)
	assert.Equal(t, ix1.Vocabulary().Entries(), ix2.Vocabulary().Entries())
	assert.Equal(t, ix1.Memberships(), ix2.Memberships())
	p1, err := ProjectAll(ix1, g, Symbols())
	require.NoError(t, err)
	p2, err := ProjectAll(ix2, g, Symbols())
	require.NoError(t, err)
	assert.Equal(t, p1, p2)

	// Language order drives vocabulary order.
	assert.Equal(t, "銀行:jpn", ix1.Vocabulary().Entries()[7].Key.String())
}

func TestUnsupportedLanguageIsExcluded(t *testing.T) {
	g := dogGraph(t)
	kept, unsupported := FilterLanguages(g, []string{"eng", "tlh", "fra"})
	assert.Equal(t, []string{"eng", "fra"}, kept)
	assert.Equal(t, []string{"tlh"}, unsupported)

	spaces := spacesFor(map[string][]string{"eng": {"dog"}, "fra": {"chien"}, "tlh": {"dog"}})
	_, with, err := Build(g, spaces, kept)
	require.NoError(t, err)
	_, without, err := Build(g, spaces, []string{"eng", "fra"})
	require.NoError(t, err)
	assert.Equal(t, without, with)
}

func TestLookupRelation(t *testing.T) {
	r, err := LookupRelation("$")
	require.NoError(t, err)
	assert.Equal(t, "verbGroup", r.Name)
	_, err = LookupRelation("~")
	assert.ErrorIs(t, err, ErrUnknownRelation)
	assert.Equal(t, []string{"@", "&", "$", "!"}, Symbols())
}

type countingGraph struct {
	ontology.Graph
	calls int
}

func (c *countingGraph) AllSynsets(pos string) ([]ontology.Synset, error) {
	c.calls++
	return c.Graph.AllSynsets(pos)
}
