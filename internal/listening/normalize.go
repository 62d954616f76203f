package listening

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gosimple/unidecode"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"
)

// maxExtraRunes is how much longer a played name may be than the target
// for the fuzzy fallback to accept it.
const maxExtraRunes = 2

var (
	bracketed = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	featuring = regexp.MustCompile(`(?i)\s+-?\s*(feat\.?|ft\.?|featuring)\s.*$`)
)

// Normalize reduces a track, album or artist name to a comparable form:
// transliterated to ASCII, without parenthetical or bracketed suffixes and
// featured artists, case folded, stripped of punctuation and with single
// spaces.
func Normalize(s string) string {
	s = unidecode.Unidecode(s)
	s = bracketed.ReplaceAllString(s, " ")
	s = featuring.ReplaceAllString(s, "")
	s = cases.Fold().String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Matches compares two names after normalization. Exact equality wins;
// otherwise the target must fuzzy-match a played name at most
// maxExtraRunes longer than itself.
func Matches(played, target string) bool {
	return matchNormalized(Normalize(played), Normalize(target))
}

func matchNormalized(played, target string) bool {
	if played == "" || target == "" {
		return false
	}
	if played == target {
		return true
	}

	extra := utf8.RuneCountInString(played) - utf8.RuneCountInString(target)
	if extra <= 0 || extra > maxExtraRunes {
		return false
	}
	return len(fuzzy.Find(target, []string{played})) > 0
}
