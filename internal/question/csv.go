package question

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Two CSV layouts are supported:
//
//	id,tipo,texto,respuestas            text questions
//	id,tipo,pregunta,imagen,respuestas  image questions
//
// Multiple accepted answers are separated by semicolons.

// LoadCSV reads questions from a CSV file, detecting the layout from the
// header row.
func LoadCSV(path string) ([]Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"id", "tipo", "respuestas"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("read %s: missing column %q", path, required)
		}
	}
	_, hasImage := col["imagen"]

	questions := make([]Question, 0, len(records)-1)
	for line, record := range records[1:] {
		field := func(name string) string {
			idx, ok := col[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		id, err := strconv.Atoi(field("id"))
		if err != nil {
			return nil, fmt.Errorf("read %s: line %d: bad id: %w", path, line+2, err)
		}

		q := Question{
			ID:       id,
			Kind:     KindText,
			Category: field("tipo"),
			Prompt:   field("texto"),
			Answers:  splitAnswers(field("respuestas")),
		}
		if hasImage {
			q.Kind = KindImage
			q.Prompt = field("pregunta")
			q.Image = field("imagen")
		}
		if len(q.Answers) == 0 {
			return nil, fmt.Errorf("read %s: line %d: question %d has no answers", path, line+2, id)
		}

		questions = append(questions, q)
	}

	return questions, nil
}

func splitAnswers(s string) []string {
	parts := strings.Split(s, ";")
	answers := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			answers = append(answers, trimmed)
		}
	}
	return answers
}
