package quizgen

import (
	"fmt"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

// ValidationError rejects input before any generation work happens.
type ValidationError = quiz.ValidationError

// GenerationError means a set could not be produced at all.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generate: %s: %v", e.Reason, e.Err)
	}
	return "generate: " + e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }
