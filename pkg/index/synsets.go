package index

// SynsetEntry is the state of one visited synset: either *LiveSynset or
// *DeadSynset. Both keep their id; only live synsets take part in sense
// membership and relation output.
type SynsetEntry interface {
	ID() int
	Name() string
	POS() string
	isSynsetEntry()
}

// Sense is one covered member of a live synset.
type Sense struct {
	VocabID int
	Key     Key
}

// Token renders the sense as "<word>:<language>:<synset>".
func (s Sense) Token(synset string) string { return s.Key.String() + ":" + synset }

// LiveSynset has at least one covered sense.
type LiveSynset struct {
	id      int
	name    string
	pos     string
	Members []Sense
}

func (s *LiveSynset) ID() int        { return s.id }
func (s *LiveSynset) Name() string   { return s.name }
func (s *LiveSynset) POS() string    { return s.pos }
func (s *LiveSynset) isSynsetEntry() {}

// DeadSynset had no covered sense in any configured language.
type DeadSynset struct {
	id   int
	name string
	pos  string
}

func (s *DeadSynset) ID() int        { return s.id }
func (s *DeadSynset) Name() string   { return s.name }
func (s *DeadSynset) POS() string    { return s.pos }
func (s *DeadSynset) isSynsetEntry() {}

// IsLive reports whether e is a *LiveSynset.
func IsLive(e SynsetEntry) bool {
	_, ok := e.(*LiveSynset)
	return ok
}

// Membership links a vocabulary id to a synset id.
type Membership struct {
	VocabID  int
	SynsetID int
}
