// Package specs extracts numeric and qualitative signals from free-text
// product specification values such as "16GB", "5000mAh" or "6.8 inch OLED 120Hz".
//
// Nothing in this package fails on malformed input: a value without a usable
// signal is reported as absent.
package specs

import (
	"regexp"
	"strconv"
	"strings"

	"tech-advisor/internal/models"
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ExtractNumber returns the leading numeric token of text, ignoring any units
// around it. ok is false when text contains no digits.
func ExtractNumber(text string) (value float64, ok bool) {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ExtractNumberOr is ExtractNumber with a fallback.
func ExtractNumberOr(text string, fallback float64) float64 {
	if v, ok := ExtractNumber(text); ok {
		return v
	}
	return fallback
}

// FindSpecValue returns the value of the first specification whose key
// contains any of keywords, compared case-insensitively.
func FindSpecValue(specs []models.Specification, keywords ...string) (string, bool) {
	for _, s := range specs {
		if KeyMatches(s.Key, keywords...) {
			return s.Value, true
		}
	}
	return "", false
}

// KeyMatches reports whether key contains any keyword, ignoring case.
func KeyMatches(key string, keywords ...string) bool {
	return ContainsAny(key, keywords...)
}

// ContainsAny reports whether text contains any of the keywords, ignoring case.
func ContainsAny(text string, keywords ...string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ContainsTerm reports whether text mentions any of terms as a standalone
// token, ignoring case. A term must not be glued to surrounding letters or
// digits, so "5g" matches "5G" but not "3.5GHz".
func ContainsTerm(text string, terms ...string) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		term = strings.ToLower(term)
		if term == "" {
			continue
		}
		for from := 0; from < len(lower); {
			i := strings.Index(lower[from:], term)
			if i < 0 {
				break
			}
			start, end := from+i, from+i+len(term)
			if tokenStart(lower, start) && tokenEnd(lower, end) {
				return true
			}
			from = start + 1
		}
	}
	return false
}

func tokenStart(s string, i int) bool {
	if i == 0 {
		return true
	}
	c := s[i-1]
	return !isAlnum(c) && c != '.'
}

func tokenEnd(s string, i int) bool {
	return i >= len(s) || !isAlnum(s[i])
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

// AnyValueMentions reports whether any specification value mentions one of
// terms as a standalone token.
func AnyValueMentions(specs []models.Specification, terms ...string) bool {
	for _, s := range specs {
		if ContainsTerm(s.Value, terms...) {
			return true
		}
	}
	return false
}

// HasKey reports whether any specification key contains one of keywords.
func HasKey(specs []models.Specification, keywords ...string) bool {
	_, ok := FindSpecValue(specs, keywords...)
	return ok
}

// WeightKg reads a weight specification and normalises it to kilograms.
// Values written in grams ("187g") are converted; a bare number above 20 is
// taken to be grams as well.
func WeightKg(value string) (float64, bool) {
	n, ok := ExtractNumber(value)
	if !ok {
		return 0, false
	}
	lower := strings.ToLower(value)
	switch {
	case strings.Contains(lower, "kg"):
		return n, true
	case strings.Contains(lower, "lb"):
		return n * 0.4536, true
	case strings.Contains(lower, "g") || n > 20:
		return n / 1000, true
	default:
		return n, true
	}
}

// StorageGB reads a storage specification in gigabytes. A leading figure in
// terabytes ("1TB SSD") is converted at 1024GB per TB.
func StorageGB(value string) (float64, bool) {
	loc := numberPattern.FindStringIndex(value)
	if loc == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(value[loc[0]:loc[1]], 64)
	if err != nil {
		return 0, false
	}
	unit := strings.ToLower(strings.TrimSpace(value[loc[1]:]))
	if strings.HasPrefix(unit, "tb") {
		return n * 1024, true
	}
	return n, true
}
