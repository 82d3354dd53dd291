package domain

import (
	"errors"
	"sort"
)

var (
	ErrUnknownSurveyType = errors.New("unknown survey type")
	ErrNoResponses       = errors.New("no responses provided")
	ErrNoValidResponses  = errors.New("no valid responses to save")
)

// ValidationResult is the outcome of filtering a submission's responses.
// Unrecognized, Empty and Truncated are informational only. Truncated counts
// the responses beyond the canonical list's length; none of them is discarded
// for that reason alone.
type ValidationResult struct {
	Valid        []Response
	Unrecognized []string
	Empty        []string
	Truncated    int
}

// ValidateResponses keeps the responses whose question text exactly matches
// one of the canonical questions and whose answer is not empty. Every entry is
// matched, so the result can never be longer than the canonical list. The
// surviving responses are returned in canonical order.
func ValidateResponses(canonical []string, responses []Response) (ValidationResult, error) {
	var result ValidationResult
	if len(canonical) == 0 {
		return result, ErrUnknownSurveyType
	}
	if len(responses) == 0 {
		return result, ErrNoResponses
	}

	if len(responses) > len(canonical) {
		result.Truncated = len(responses) - len(canonical)
	}

	position := make(map[string]int, len(canonical))
	for i, question := range canonical {
		if _, seen := position[question]; !seen {
			position[question] = i
		}
	}

	for _, response := range responses {
		if _, ok := position[response.Question]; !ok {
			result.Unrecognized = append(result.Unrecognized, response.Question)
			continue
		}
		if response.Answer.IsEmpty() {
			result.Empty = append(result.Empty, response.Question)
			continue
		}
		result.Valid = append(result.Valid, response)
	}

	sort.SliceStable(result.Valid, func(i, j int) bool {
		return position[result.Valid[i].Question] < position[result.Valid[j].Question]
	})

	if len(result.Valid) == 0 {
		return result, ErrNoValidResponses
	}
	return result, nil
}
