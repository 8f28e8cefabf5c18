package usecase

import (
	"strings"

	"casebot/internal/domain"
)

// Canonical stored values for yes/no answers.
const (
	AnswerYes = "نعم"
	AnswerNo  = "لا"
)

var affirmativeTokens = map[string]struct{}{
	"نعم":   {},
	"اي":    {},
	"ايه":   {},
	"ايوه":  {},
	"yes":   {},
	"y":     {},
	"na3am": {},
	"aywa":  {},
}

var negativeTokens = map[string]struct{}{
	"لا":  {},
	"كلا": {},
	"no":  {},
	"n":   {},
	"la":  {},
	"la2": {},
}

// validateAnswer normalizes raw input for the given answer type. The second
// return value is false when the input is rejected; rejection must never
// mutate session state, the caller re-prompts the same question.
func validateAnswer(raw string, t domain.AnswerType) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	switch t {
	case domain.AnswerYesNo:
		token := strings.ToLower(trimmed)
		if _, ok := affirmativeTokens[token]; ok {
			return AnswerYes, true
		}
		if _, ok := negativeTokens[token]; ok {
			return AnswerNo, true
		}
		return "", false
	default:
		// Free text accepts anything, including the empty string.
		return trimmed, true
	}
}
