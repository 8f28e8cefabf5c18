package domain

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AnswerType is the closed set of answer validations a question can require.
type AnswerType int

const (
	AnswerFreeText AnswerType = iota
	AnswerYesNo
)

// QuestionDefinition is a single catalog entry. Order within the catalog is
// significant: it defines both the interrogation sequence and the column
// order of the persisted row.
type QuestionDefinition struct {
	Key    string
	Prompt string
	Type   AnswerType
}

// Catalog is the fixed, ordered list of questions asked during one flow.
// Immutable after construction.
type Catalog struct {
	questions []QuestionDefinition
}

// NewCatalog validates and wraps an ordered question list.
func NewCatalog(questions []QuestionDefinition) (Catalog, error) {
	if len(questions) == 0 {
		return Catalog{}, fmt.Errorf("domain: catalog must not be empty")
	}
	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if strings.TrimSpace(q.Key) == "" {
			return Catalog{}, fmt.Errorf("domain: question with prompt %q has no key", q.Prompt)
		}
		if strings.TrimSpace(q.Prompt) == "" {
			return Catalog{}, fmt.Errorf("domain: question %q has no prompt", q.Key)
		}
		if _, dup := seen[q.Key]; dup {
			return Catalog{}, fmt.Errorf("domain: duplicate question key %q", q.Key)
		}
		seen[q.Key] = struct{}{}
	}
	qs := make([]QuestionDefinition, len(questions))
	copy(qs, questions)
	return Catalog{questions: qs}, nil
}

// DefaultCatalog returns the built-in case record questions.
func DefaultCatalog() Catalog {
	c, err := NewCatalog([]QuestionDefinition{
		{Key: "full_name", Prompt: "الاسم الكامل:", Type: AnswerFreeText},
		{Key: "phone", Prompt: "رقم الهاتف:", Type: AnswerFreeText},
		{Key: "governorate", Prompt: "المحافظة:", Type: AnswerFreeText},
		{Key: "case_details", Prompt: "تفاصيل الحالة:", Type: AnswerFreeText},
		{Key: "urgent", Prompt: "هل الحالة مستعجلة؟", Type: AnswerYesNo},
	})
	if err != nil {
		panic(err) // built-in catalog is validated at author time
	}
	return c
}

func (c Catalog) Len() int {
	return len(c.questions)
}

// Question returns the definition at position i. Callers must hold
// 0 <= i < Len().
func (c Catalog) Question(i int) QuestionDefinition {
	return c.questions[i]
}

// Keys returns the ordered question keys.
func (c Catalog) Keys() []string {
	keys := make([]string, len(c.questions))
	for i, q := range c.questions {
		keys[i] = q.Key
	}
	return keys
}

// HeaderLabels returns the ordered prompt labels for header generation,
// with any trailing colon stripped.
func (c Catalog) HeaderLabels() []string {
	labels := make([]string, len(c.questions))
	for i, q := range c.questions {
		labels[i] = strings.TrimRight(q.Prompt, ":")
	}
	return labels
}

// yamlQuestion is the on-disk question shape for catalog files.
type yamlQuestion struct {
	Key    string `yaml:"key"`
	Prompt string `yaml:"prompt"`
	Type   string `yaml:"type"`
}

// LoadCatalog reads a catalog from a YAML file: a list of
// {key, prompt, type} entries where type is "free_text" or "yes_no"
// (free_text when omitted).
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("domain: read catalog file: %w", err)
	}
	var raw []yamlQuestion
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Catalog{}, fmt.Errorf("domain: parse catalog file: %w", err)
	}

	questions := make([]QuestionDefinition, 0, len(raw))
	for _, q := range raw {
		var t AnswerType
		switch q.Type {
		case "", "free_text":
			t = AnswerFreeText
		case "yes_no":
			t = AnswerYesNo
		default:
			return Catalog{}, fmt.Errorf("domain: question %q has unknown type %q", q.Key, q.Type)
		}
		questions = append(questions, QuestionDefinition{Key: q.Key, Prompt: q.Prompt, Type: t})
	}
	return NewCatalog(questions)
}
