// Package matcher реализует примитив сопоставления ключевых слов с текстом.
//
// Текст и ключевое слово нормализуются одинаково: юникод-декомпозиция с удалением
// диакритики, case folding, разбиение на слова и упрощенный стемминг английских
// окончаний. Ключевое слово найдено, если его слова идут в тексте подряд.
package matcher

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidUTF8  = errors.New("text is not valid utf-8")
	ErrEmptyKeyword = errors.New("keyword has no words")
)

// TextMatcher не хранит состояния и безопасен для конкурентного использования.
type TextMatcher struct{}

func NewTextMatcher() *TextMatcher {
	return &TextMatcher{}
}

// Match сообщает, встречается ли keyword в text.
func (m *TextMatcher) Match(text, keyword string) (bool, error) {
	if !utf8.ValidString(text) || !utf8.ValidString(keyword) {
		return false, ErrInvalidUTF8
	}
	needle, err := m.tokens(keyword)
	if err != nil {
		return false, err
	}
	if len(needle) == 0 {
		return false, ErrEmptyKeyword
	}
	haystack, err := m.tokens(text)
	if err != nil {
		return false, err
	}
	return containsSeq(haystack, needle), nil
}

// ValidKeyword сообщает, содержит ли keyword хотя бы одно слово,
// то есть может ли оно вообще совпасть с каким-либо текстом.
func ValidKeyword(keyword string) bool {
	if !utf8.ValidString(keyword) {
		return false
	}
	words, err := (&TextMatcher{}).tokens(keyword)
	return err == nil && len(words) > 0
}

func (m *TextMatcher) tokens(s string) ([]string, error) {
	// Трансформеры хранят состояние, поэтому создаются на каждый вызов.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		return nil, err
	}
	plain = strings.NewReplacer("'", "", "’", "").Replace(plain)
	words := strings.FieldsFunc(cases.Fold().String(plain), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for i, w := range words {
		words[i] = stem(w)
	}
	return words, nil
}

// invariantWords не сводятся к единственному числу.
var invariantWords = map[string]struct{}{
	"news": {},
}

// stem сводит распространенные формы множественного числа к единственному.
// Конечное "e" после "s" отбрасывается у обеих форм, поэтому bus и buses,
// house и houses дают одну основу.
func stem(w string) string {
	if _, ok := invariantWords[w]; ok {
		return w
	}
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 4 && (strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes") ||
		strings.HasSuffix(w, "xes") || strings.HasSuffix(w, "sses") || strings.HasSuffix(w, "zes")):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") &&
		!strings.HasSuffix(w, "us") && !strings.HasSuffix(w, "is"):
		w = w[:len(w)-1]
	}
	if len(w) > 3 && strings.HasSuffix(w, "se") {
		w = w[:len(w)-1]
	}
	return w
}

func containsSeq(haystack, needle []string) bool {
	if len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, w := range needle {
			if haystack[i+j] != w {
				continue outer
			}
		}
		return true
	}
	return false
}
