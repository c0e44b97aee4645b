package intake

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Answers are the four free-text fields of the intake form.
type Answers struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email" validate:"omitempty,email"`
	Position   string `json:"position" validate:"required"`
	Background string `json:"background" validate:"required"`
}

var validate = validator.New()

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (a Answers) Trimmed() Answers {
	return Answers{
		FullName:   strings.TrimSpace(a.FullName),
		Email:      strings.TrimSpace(a.Email),
		Position:   strings.TrimSpace(a.Position),
		Background: strings.TrimSpace(a.Background),
	}
}

// Validate checks the trimmed answers.
func (a Answers) Validate() error {
	t := a.Trimmed()
	if err := validate.Struct(&t); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAnswers, err)
	}
	return nil
}

func (a Answers) promptData(schema string) map[string]string {
	return map[string]string{
		"FullName":   a.FullName,
		"Email":      a.Email,
		"Position":   a.Position,
		"Background": a.Background,
		"Schema":     schema,
	}
}
