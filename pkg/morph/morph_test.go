package morph

import (
	"testing"
)

func TestToHiragana(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"ア", "あ"},
		{"ガ", "が"},
		{"パ", "ぱ"},
		{"ン", "ん"},
		{"ー", "ー"},
		{"abc", "abc"},
		{"あいう", "あいう"},
		{"テスト", "てすと"},
	}
	for _, tt := range tests {
		if got := ToHiragana(tt.in); got != tt.out {
			t.Errorf("ToHiragana(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}

func TestBaseForm(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	// 走った is the past tense of 走る.
	if got := a.BaseForm("走った"); got != "走る" {
		t.Errorf("BaseForm(走った) = %q; want 走る", got)
	}
	if got := a.BaseForm("犬"); got != "犬" {
		t.Errorf("BaseForm(犬) = %q; want 犬", got)
	}
}

func TestCandidates(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}

	got := a.Candidates("New_York", "eng")
	want := []string{"new_york", "New York", "New-York"}
	if len(got) != len(want) {
		t.Fatalf("Candidates(New_York) = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Candidates(New_York) = %v; want %v", got, want)
		}
	}

	if got := a.Candidates("dog", "eng"); len(got) != 0 {
		t.Errorf("expected no candidates for a lower-case word, got %v", got)
	}

	jp := a.Candidates("走った", Japanese)
	found := false
	for _, c := range jp {
		if c == "走る" {
			found = true
		}
		if c == "走った" {
			t.Errorf("candidates must not repeat the word itself: %v", jp)
		}
	}
	if !found {
		t.Errorf("expected base form 走る among %v", jp)
	}

	kana := a.Candidates("イヌ", Japanese)
	if len(kana) == 0 || kana[0] != "いぬ" {
		t.Errorf("expected hiragana folding first, got %v", kana)
	}
}

func TestCandidatesWithoutAnalyzer(t *testing.T) {
	var a *Analyzer
	got := a.Candidates("イヌ", Japanese)
	if len(got) != 1 || got[0] != "いぬ" {
		t.Errorf("nil analyzer should still fold kana, got %v", got)
	}
}
