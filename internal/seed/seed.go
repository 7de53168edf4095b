// Package seed loads the question bank from YAML.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"debug-challenge/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestions []byte

type questionFile struct {
	Questions []domain.Question `yaml:"questions"`
}

// Default returns the built-in sample questions.
func Default() []domain.Question {
	questions, err := Parse(defaultQuestions)
	if err != nil {
		panic(fmt.Sprintf("built-in questions are invalid: %v", err))
	}
	return questions
}

// LoadFile reads questions from a YAML file.
func LoadFile(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	questions, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return questions, nil
}

// Parse decodes and validates a question file. Questions without an id are
// numbered after the highest explicit id, in file order.
func Parse(data []byte) ([]domain.Question, error) {
	var file questionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	var maxID int64
	for _, q := range file.Questions {
		if q.ID > maxID {
			maxID = q.ID
		}
	}

	seenIDs := make(map[int64]bool, len(file.Questions))
	seenSlots := make(map[[2]int]bool, len(file.Questions))
	for i := range file.Questions {
		q := &file.Questions[i]
		if q.ID == 0 {
			maxID++
			q.ID = maxID
		}
		if err := validate(*q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		if seenIDs[q.ID] {
			return nil, fmt.Errorf("question %d: duplicate id %d", i+1, q.ID)
		}
		slot := [2]int{q.Round, q.QuestionNumber}
		if seenSlots[slot] {
			return nil, fmt.Errorf("question %d: duplicate round %d question %d", i+1, q.Round, q.QuestionNumber)
		}
		seenIDs[q.ID] = true
		seenSlots[slot] = true
	}
	return file.Questions, nil
}

func validate(q domain.Question) error {
	switch {
	case q.Round < 1:
		return fmt.Errorf("round must be at least 1")
	case q.QuestionNumber < 1:
		return fmt.Errorf("question_number must be at least 1")
	case strings.TrimSpace(q.Content) == "":
		return fmt.Errorf("content is required")
	case strings.TrimSpace(q.Answer) == "":
		return fmt.Errorf("answer is required")
	case q.TimeLimit < 0:
		return fmt.Errorf("time_limit cannot be negative")
	}
	return nil
}

// FileLoader serves questions from a YAML file, or the built-in set when no path is given.
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	if l.path == "" {
		return Default(), nil
	}
	return LoadFile(l.path)
}
