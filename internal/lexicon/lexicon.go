// Package lexicon expands slang and fixes common typing shortcuts in
// recognized text before it reaches translation.
//
// The slang and autocorrect tables are plain data loaded at startup; the
// matching logic here is language-table-agnostic. Matches are whole-word only
// and the case class of the matched span is preserved in the substitution.
package lexicon

import (
	"embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed tables/slang.yaml tables/autocorrect.yaml
var defaultTables embed.FS

// Table maps a language code to its term → expansion entries.
type Table map[string]map[string]string

type phraseRule struct {
	re        *regexp.Regexp
	expansion string
}

// rules holds one language's compiled entries: single words by lowercase
// lookup, multi-word phrases as ordered regexes, longest first, so an idiom
// is never clobbered by one of its single-word sub-matches.
type rules struct {
	words   map[string]string
	phrases []phraseRule
}

// Lexicon holds the compiled slang and autocorrect tables.
type Lexicon struct {
	slang       map[string]rules
	corrections map[string]rules
}

// Load builds a lexicon from YAML table files. Empty paths fall back to the
// embedded default tables.
func Load(slangPath, autocorrectPath string) (*Lexicon, error) {
	slang, err := loadTable(slangPath, "tables/slang.yaml")
	if err != nil {
		return nil, fmt.Errorf("slang table: %w", err)
	}
	corrections, err := loadTable(autocorrectPath, "tables/autocorrect.yaml")
	if err != nil {
		return nil, fmt.Errorf("autocorrect table: %w", err)
	}
	return New(slang, corrections)
}

// New compiles a lexicon from in-memory tables.
func New(slang, corrections Table) (*Lexicon, error) {
	s, err := compile(slang)
	if err != nil {
		return nil, err
	}
	c, err := compile(corrections)
	if err != nil {
		return nil, err
	}
	return &Lexicon{slang: s, corrections: c}, nil
}

func loadTable(path, embedded string) (Table, error) {
	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = defaultTables.ReadFile(embedded)
	}
	if err != nil {
		return nil, err
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return t, nil
}

func compile(t Table) (map[string]rules, error) {
	out := make(map[string]rules, len(t))
	for lang, entries := range t {
		r := rules{words: make(map[string]string)}
		var phraseTerms []string
		for term, expansion := range entries {
			term = strings.ToLower(strings.TrimSpace(term))
			if term == "" {
				continue
			}
			if strings.ContainsRune(term, ' ') {
				phraseTerms = append(phraseTerms, term)
			} else {
				r.words[term] = expansion
			}
		}
		sort.Slice(phraseTerms, func(i, j int) bool {
			if len(phraseTerms[i]) != len(phraseTerms[j]) {
				return len(phraseTerms[i]) > len(phraseTerms[j])
			}
			return phraseTerms[i] < phraseTerms[j]
		})
		for _, term := range phraseTerms {
			// \b misfires on non-ASCII letters, so boundaries are spelled
			// out as not-a-word-rune classes.
			re, err := regexp.Compile(`(?i)(^|[^\p{L}\p{N}'’])(` + regexp.QuoteMeta(term) + `)($|[^\p{L}\p{N}'’])`)
			if err != nil {
				return nil, fmt.Errorf("term %q in %s: %w", term, lang, err)
			}
			r.phrases = append(r.phrases, phraseRule{re: re, expansion: entries[term]})
		}
		out[strings.ToLower(lang)] = r
	}
	return out, nil
}

// ExpandSlang replaces whole-word slang terms with their expansions and
// reports whether anything changed. Unknown languages pass through.
func (l *Lexicon) ExpandSlang(text, lang string) (string, bool) {
	return apply(text, l.slang[strings.ToLower(lang)])
}

// Autocorrect applies the fixed typo/contraction table for the language.
// It runs after slang expansion so corrected tokens are available downstream.
// Unknown tokens always pass through unchanged.
func (l *Lexicon) Autocorrect(text, lang string) string {
	out, _ := apply(text, l.corrections[strings.ToLower(lang)])
	return out
}

func apply(text string, r rules) (string, bool) {
	if len(r.words) == 0 && len(r.phrases) == 0 {
		return text, false
	}
	modified := false

	// Phrases first: longest-match-wins over single-word entries.
	for _, p := range r.phrases {
		if out, changed := p.replaceAll(text); changed {
			text = out
			modified = true
		}
	}

	if len(r.words) > 0 {
		fields := strings.Fields(text)
		wordModified := false
		for i, field := range fields {
			core, lead, trail := trimPunct(field)
			if core == "" {
				continue
			}
			expansion, ok := r.words[strings.ToLower(core)]
			if !ok {
				continue
			}
			fields[i] = lead + matchCase(core, expansion) + trail
			wordModified = true
		}
		if wordModified {
			text = strings.Join(fields, " ")
			modified = true
		}
	}
	return text, modified
}

// replaceAll substitutes every occurrence of the phrase. The scan resumes at
// the end of the matched term itself, not the trailing boundary character, so
// a separator shared by two adjacent occurrences ("no cap no cap") still
// delimits the second one.
func (p phraseRule) replaceAll(text string) (string, bool) {
	var b strings.Builder
	modified := false
	for {
		loc := p.re.FindStringSubmatchIndex(text)
		if loc == nil {
			break
		}
		// Groups: 1 leading boundary, 2 term, 3 trailing boundary.
		termStart, termEnd := loc[4], loc[5]
		b.WriteString(text[:termStart])
		b.WriteString(matchCase(text[termStart:termEnd], p.expansion))
		text = text[termEnd:]
		modified = true
	}
	if !modified {
		return text, false
	}
	b.WriteString(text)
	return b.String(), true
}

// trimPunct splits a token into leading punctuation, the word core, and
// trailing punctuation, so "lol!" matches the "lol" entry and keeps its "!".
func trimPunct(token string) (core, lead, trail string) {
	runes := []rune(token)
	start, end := 0, len(runes)
	for start < end && !isWordRune(runes[start]) {
		start++
	}
	for end > start && !isWordRune(runes[end-1]) {
		end--
	}
	return string(runes[start:end]), string(runes[:start]), string(runes[end:])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' || r == '’'
}

// matchCase carries the case class of the matched span onto the expansion:
// an all-caps match upper-cases the whole expansion, a leading capital
// capitalizes its first letter, anything else uses the table entry as-is.
func matchCase(match, expansion string) string {
	if isAllUpper(match) {
		return strings.ToUpper(expansion)
	}
	if first := []rune(match); len(first) > 0 && unicode.IsUpper(first[0]) {
		return capitalize(expansion)
	}
	return expansion
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
