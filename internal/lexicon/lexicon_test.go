package lexicon

import (
	"strings"
	"testing"
)

func testLexicon(t *testing.T) *Lexicon {
	t.Helper()
	l, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return l
}

func TestExpandSlangWholeWord(t *testing.T) {
	l := testLexicon(t)

	got, modified := l.ExpandSlang("brb in five minutes", "en")
	if !modified {
		t.Fatalf("expected modification")
	}
	if got != "be right back in five minutes" {
		t.Fatalf("ExpandSlang: got %q", got)
	}

	// "capital" must not be corrupted by the "cap" entry.
	got, modified = l.ExpandSlang("the capital city", "en")
	if modified || got != "the capital city" {
		t.Fatalf("partial-word corruption: got %q (modified=%v)", got, modified)
	}
}

func TestExpandSlangPreservesCaseClass(t *testing.T) {
	l := testLexicon(t)

	got, modified := l.ExpandSlang("LOL that's great", "en")
	if !modified {
		t.Fatalf("expected modification")
	}
	expansion := strings.TrimSuffix(got, " that's great")
	if expansion == "" || expansion == got {
		t.Fatalf("unexpected expansion shape: %q", got)
	}
	if expansion != strings.ToUpper(expansion) {
		t.Fatalf("all-caps match should keep an upper-case class, got %q", expansion)
	}

	got, _ = l.ExpandSlang("Brb in five", "en")
	if !strings.HasPrefix(got, "Be right back") {
		t.Fatalf("leading capital not preserved: %q", got)
	}
}

func TestExpandSlangLongestPhraseFirst(t *testing.T) {
	l := testLexicon(t)

	// "no cap" is a phrase entry and must win over the "cap" word entry.
	got, modified := l.ExpandSlang("that was insane no cap", "en")
	if !modified {
		t.Fatalf("expected modification")
	}
	if got != "that was insane no lie" {
		t.Fatalf("phrase expansion: got %q", got)
	}
}

func TestExpandSlangAdjacentPhrases(t *testing.T) {
	l := testLexicon(t)

	// Occurrences separated by a single space share a boundary character;
	// both must expand.
	got, _ := l.ExpandSlang("no cap no cap", "en")
	if got != "no lie no lie" {
		t.Fatalf("adjacent phrases: got %q", got)
	}

	got, _ = l.ExpandSlang("no cap, no cap!", "en")
	if got != "no lie, no lie!" {
		t.Fatalf("adjacent punctuated phrases: got %q", got)
	}
}

func TestExpandSlangKeepsPunctuation(t *testing.T) {
	l := testLexicon(t)

	got, _ := l.ExpandSlang("omg!", "en")
	if got != "oh my god!" {
		t.Fatalf("punctuation lost: got %q", got)
	}
}

func TestExpandSlangUnknownLanguage(t *testing.T) {
	l := testLexicon(t)

	got, modified := l.ExpandSlang("lol d'accord", "sv")
	if modified || got != "lol d'accord" {
		t.Fatalf("unknown language should pass through, got %q (modified=%v)", got, modified)
	}
}

func TestExpandSlangNonASCII(t *testing.T) {
	l := testLexicon(t)

	got, modified := l.ExpandSlang("mdr c'est trop drôle", "fr")
	if !modified || got != "mort de rire c'est trop drôle" {
		t.Fatalf("fr expansion: got %q (modified=%v)", got, modified)
	}
}

func TestAutocorrect(t *testing.T) {
	l := testLexicon(t)

	cases := map[string]string{
		"im happy":          "I'm happy",
		"ur right tho":      "your right though",
		"see u tomorrow":    "see you tomorrow",
		"totally unchanged": "totally unchanged",
	}

	for in, want := range cases {
		if got := l.Autocorrect(in, "en"); got != want {
			t.Errorf("Autocorrect(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestAutocorrectRunsAfterSlangExpansion(t *testing.T) {
	l := testLexicon(t)

	text, _ := l.ExpandSlang("idk tbh", "en")
	text = l.Autocorrect(text, "en")
	if text != "I don't know to be honest" {
		t.Fatalf("pipeline order: got %q", text)
	}
}

func TestExternalTableOverride(t *testing.T) {
	l, err := New(Table{"en": {"afk": "away from keyboard"}}, Table{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, modified := l.ExpandSlang("afk for a bit", "en")
	if !modified || got != "away from keyboard for a bit" {
		t.Fatalf("custom table: got %q (modified=%v)", got, modified)
	}
	// The built-in defaults are not in play for a custom lexicon.
	if _, modified := l.ExpandSlang("brb", "en"); modified {
		t.Fatalf("custom lexicon should not inherit embedded defaults")
	}
}
