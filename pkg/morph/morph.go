// Package morph proposes normalized spellings for lemmas the vector spaces
// do not cover. It never changes what gets indexed; the extractor only
// reports the candidates.
package morph

import (
	"strings"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Japanese is the ontology language code analyzed with kagome.
const Japanese = "jpn"

// Analyzer produces normalization candidates.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer creates an analyzer backed by the IPA dictionary.
func NewAnalyzer() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// BaseForm returns the dictionary form of a possibly inflected expression:
// trailing particles and auxiliaries are dropped and the last remaining token
// is replaced by its base form. Multiword lemmas in the ontology use "_"
// between words; it is dropped first.
func (a *Analyzer) BaseForm(text string) string {
	text = strings.ReplaceAll(text, "_", "")
	type part struct{ surface, base, pos string }
	var parts []part
	for _, token := range a.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}
		// IPA features: 0-3 POS, 4-5 conjugation, 6 base form, 7-8 reading.
		features := token.Features()
		p := part{surface: token.Surface, base: token.Surface}
		if len(features) > 0 {
			p.pos = features[0]
		}
		if len(features) > 6 && features[6] != "*" {
			p.base = features[6]
		}
		parts = append(parts, p)
	}
	for len(parts) > 1 {
		last := parts[len(parts)-1].pos
		if last != "助詞" && last != "助動詞" {
			break
		}
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range parts[:len(parts)-1] {
		b.WriteString(p.surface)
	}
	b.WriteString(parts[len(parts)-1].base)
	return b.String()
}

// Candidates lists distinct alternative spellings of word, most
// conservative first, excluding word itself.
func (a *Analyzer) Candidates(word, lang string) []string {
	var out []string
	seen := map[string]bool{word: true}
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}

	add(strings.ToLower(word))
	if strings.Contains(word, "_") {
		add(strings.ReplaceAll(word, "_", " "))
		add(strings.ReplaceAll(word, "_", "-"))
	}
	if lang == Japanese {
		add(ToHiragana(word))
		if a != nil && hasJapanese(word) {
			add(a.BaseForm(word))
		}
	}
	return out
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

func hasJapanese(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}
