package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

type GeneratedBatch struct {
	Questions []GeneratedQuestion `json:"questions"`
}

type GeneratedQuestion struct {
	Stem   string   `json:"stem"`
	Answer string   `json:"answer"`
	Hints  []string `json:"hints"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func ParseResponse(responseBody string) (*GeneratedBatch, error) {
	cleaned := stripCodeFences(responseBody)

	var batch GeneratedBatch
	if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateBatch(&batch); err != nil {
		return nil, err
	}

	return &batch, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateBatch(batch *GeneratedBatch) error {
	var errs []string

	if len(batch.Questions) == 0 {
		return &ValidationError{Errors: []string{"no questions in batch"}}
	}

	for i, q := range batch.Questions {
		qNum := i + 1

		if strings.TrimSpace(q.Stem) == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty stem", qNum))
		}
		if strings.TrimSpace(q.Answer) == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty answer", qNum))
		}
		if len(q.Hints) == 0 || len(q.Hints) > 3 {
			errs = append(errs, fmt.Sprintf("question %d: expected 1-3 hints, got %d", qNum, len(q.Hints)))
		}
		for j, h := range q.Hints {
			if strings.TrimSpace(h) == "" {
				errs = append(errs, fmt.Sprintf("question %d: hint %d is empty", qNum, j+1))
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
