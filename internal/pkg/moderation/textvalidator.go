package moderation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// TextResult carries the outcome of the heuristic text checks. All failing
// rules are reported; the checks never short-circuit.
type TextResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Rule thresholds. These are tuning knobs, not physical constants.
const (
	minDescriptionLength = 10
	minWordsForRatio     = 3
	repetitionRatioMin   = 0.4
	uniqueCharRatioMin   = 0.4
	vowelFractionMin     = 0.2
	similarWordRatioMax  = 0.5
	maxLinkCount         = 3
	uppercaseRatioMax    = 0.5
)

var (
	lettersRegex   = regexp.MustCompile(`[a-zA-ZáéíóúñÁÉÍÓÚÑ]`)
	uppercaseRegex = regexp.MustCompile(`[A-ZÁÉÍÓÚÑ]`)
	urlRegex       = regexp.MustCompile(`(?i)https?://[^\s]+`)
	phoneRegex     = regexp.MustCompile(`(\+?\d{1,4}[\s-]?)?\(?\d{2,4}\)?[\s-]?\d{3,4}[\s-]?\d{3,4}`)

	// Basic blacklist for Spanish. Whole-word, case-insensitive.
	profanityRegex = regexp.MustCompile(`(?i)\b(puto|puta|idiota|estupido|estúpido|imbecil|imbécil|mierda|carajo|pendejo|boludo|pelotudo|gil)\b`)
)

// textStats is the shared word/character context computed once per call and
// handed to every rule.
type textStats struct {
	trimmed string
	words   []string // lowercased, whitespace-split
}

// textRule is a single independent check. A non-empty return value is the
// user-facing error for that rule.
type textRule struct {
	kind  string
	check func(s *textStats) string
}

var textRules = []textRule{
	{kind: "min_length", check: checkMinLength},
	{kind: "has_letters", check: checkHasLetters},
	{kind: "word_repetition", check: checkWordRepetition},
	{kind: "nonsense_words", check: checkNonsenseWords},
	{kind: "similar_words", check: checkSimilarWords},
	{kind: "link_count", check: checkLinkCount},
	{kind: "excessive_caps", check: checkExcessiveCaps},
	{kind: "offensive_language", check: checkOffensiveLanguage},
	{kind: "phone_number", check: checkPhoneNumber},
}

// ValidateText runs the quality and safety heuristics over the given text and
// collects every violated rule. Empty text is trivially valid; minimum
// description requirements are enforced by the callers that need them.
func ValidateText(text string) TextResult {
	result := TextResult{Valid: true}
	if text == "" {
		return result
	}

	trimmed := strings.TrimSpace(text)
	stats := &textStats{
		trimmed: trimmed,
		words:   strings.Fields(strings.ToLower(trimmed)),
	}

	for _, rule := range textRules {
		if msg := rule.check(stats); msg != "" {
			result.Errors = append(result.Errors, msg)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func checkMinLength(s *textStats) string {
	if utf8.RuneCountInString(s.trimmed) < minDescriptionLength {
		return "La descripción debe tener al menos 10 caracteres"
	}
	return ""
}

func checkHasLetters(s *textStats) string {
	if !lettersRegex.MatchString(s.trimmed) {
		return "La descripción debe contener texto, no solo emojis o símbolos"
	}
	return ""
}

func checkWordRepetition(s *textStats) string {
	if len(s.words) < minWordsForRatio {
		return ""
	}
	unique := make(map[string]struct{}, len(s.words))
	for _, w := range s.words {
		unique[w] = struct{}{}
	}
	if float64(len(unique))/float64(len(s.words)) < repetitionRatioMin {
		return "El texto parece ser spam (demasiadas palabras repetidas)"
	}
	return ""
}

func checkNonsenseWords(s *textStats) string {
	for _, w := range s.words {
		if isNonsenseWord(w) {
			return "El texto parece contener palabras sin sentido"
		}
	}
	return ""
}

// isNonsenseWord flags keyboard-mash style words: heavy character repetition
// ("aaaaab"), short patterns typed in a loop ("asdasd", "qweqwe"), or
// unpronounceable words with almost no vowels.
func isNonsenseWord(word string) bool {
	runes := []rune(word)
	if len(runes) < 4 {
		return false
	}

	unique := make(map[rune]struct{}, len(runes))
	vowels := 0
	for _, r := range runes {
		unique[r] = struct{}{}
		if strings.ContainsRune("aeiouáéíóú", r) {
			vowels++
		}
	}

	if float64(len(unique))/float64(len(runes)) < uniqueCharRatioMin {
		return true
	}
	if len(runes) > 5 && float64(vowels)/float64(len(runes)) < vowelFractionMin {
		return true
	}
	if len(runes) >= 6 && isRepeatedPattern(runes) {
		return true
	}
	return false
}

// isRepeatedPattern reports whether the word is one short pattern repeated,
// e.g. "asdasd" = "asd" x2 or "abcabcabc" = "abc" x3.
func isRepeatedPattern(runes []rune) bool {
	n := len(runes)
	for size := 2; size <= n/2; size++ {
		if n%size != 0 {
			continue
		}
		repeated := true
		for i := size; i < n; i += size {
			if string(runes[i:i+size]) != string(runes[:size]) {
				repeated = false
				break
			}
		}
		if repeated {
			return true
		}
	}
	return false
}

func checkSimilarWords(s *textStats) string {
	if len(s.words) < minWordsForRatio {
		return ""
	}
	similar := 0
	for i, word := range s.words {
		if utf8.RuneCountInString(word) < 4 {
			continue
		}
		for j, other := range s.words {
			if i == j || utf8.RuneCountInString(other) < 4 {
				continue
			}
			if strings.Contains(word, other) || strings.Contains(other, word) {
				similar++
				break
			}
		}
	}
	if float64(similar)/float64(len(s.words)) > similarWordRatioMax {
		return "El texto contiene demasiadas palabras similares"
	}
	return ""
}

func checkLinkCount(s *textStats) string {
	if len(urlRegex.FindAllString(s.trimmed, -1)) > maxLinkCount {
		return "Demasiados enlaces en la descripción"
	}
	return ""
}

func checkExcessiveCaps(s *textStats) string {
	letters := len(lettersRegex.FindAllString(s.trimmed, -1))
	if letters == 0 {
		return ""
	}
	upper := len(uppercaseRegex.FindAllString(s.trimmed, -1))
	if float64(upper)/float64(letters) > uppercaseRatioMax {
		return "Evitá usar MAYÚSCULAS en exceso"
	}
	return ""
}

func checkOffensiveLanguage(s *textStats) string {
	if profanityRegex.MatchString(s.trimmed) {
		return "La descripción contiene lenguaje inapropiado"
	}
	return ""
}

func checkPhoneNumber(s *textStats) string {
	if phoneRegex.MatchString(s.trimmed) {
		return "No incluyas números de teléfono en la descripción. Usá el campo de contacto"
	}
	return ""
}
