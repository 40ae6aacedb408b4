package layout

import (
	"regexp"
	"strings"
	"unicode"
)

// Partition classifies each line by its structural role. It deliberately
// ignores font information so that it stays an independent signal from the
// bold/size heuristics: a title must convince both detectors.
func Partition(lines []Line) []Element {
	elements := make([]Element, 0, len(lines))
	for _, line := range lines {
		text := line.Text()
		if text == "" {
			continue
		}
		elements = append(elements, Element{
			Category: classifyLine(text),
			Text:     text,
		})
	}
	return elements
}

var (
	numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*\.?\s+\p{Lu}`)
	listMarkerRe      = regexp.MustCompile(`^([-•*‣]|\(\d+\)|\d+[.)])\s+`)
	columnGapRe       = regexp.MustCompile(`\s{2,}|\t`)
)

func classifyLine(text string) Category {
	words := strings.Fields(text)

	if listMarkerRe.MatchString(text) && len(words) <= 30 && !numberedHeadingRe.MatchString(text) {
		return CategoryListItem
	}
	if len(columnGapRe.FindAllString(text, -1)) >= 2 && digitRatio(text) > 0.15 {
		return CategoryTable
	}
	if looksLikeTitle(text, words) {
		return CategoryTitle
	}
	if len(words) < 3 {
		return CategoryText
	}
	return CategoryNarrative
}

// looksLikeTitle applies structural cues only: short, no sentence-final
// punctuation, leading capital, and mostly capitalized or numbered.
func looksLikeTitle(text string, words []string) bool {
	if len(words) == 0 || len(words) > 12 {
		return false
	}
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, ";") ||
		strings.HasSuffix(text, ",") || strings.HasSuffix(text, ":") {
		return false
	}
	first := []rune(words[0])
	if !unicode.IsUpper(first[0]) && !unicode.IsDigit(first[0]) {
		return false
	}
	if numberedHeadingRe.MatchString(text) {
		return true
	}
	capitalized := 0
	for _, w := range words {
		r := []rune(w)
		if unicode.IsUpper(r[0]) || unicode.IsDigit(r[0]) {
			capitalized++
		}
	}
	// Short headers are usually title-cased or fully capitalized.
	return float64(capitalized) >= 0.6*float64(len(words))
}

func digitRatio(text string) float64 {
	if text == "" {
		return 0
	}
	digits := 0
	total := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}
