// Package question holds the in-memory question pool loaded at startup.
package question

import (
	"math/rand"
)

// Kind distinguishes text prompts from image prompts.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Question is an immutable question record. Loaded once at startup and
// never mutated afterwards.
type Question struct {
	ID       int
	Kind     Kind
	Category string   // free-form category tag from the CSV
	Prompt   string   // question text
	Image    string   // image reference, only for KindImage
	Answers  []string // accepted answers, in CSV order
}

// Pool is the full loaded question list. The list is read-only after
// construction, so a Pool is safe for concurrent use by many rooms.
type Pool struct {
	questions []Question
}

// NewPool builds a pool over the given questions.
func NewPool(questions []Question) *Pool {
	return &Pool{questions: questions}
}

// Len returns the number of loaded questions.
func (p *Pool) Len() int {
	return len(p.questions)
}

// PickUnused returns a uniformly random question whose ID is not in used.
// When every question has been used, the whole pool becomes a candidate
// again and used is cleared as a side effect — repeat avoidance resets once
// the deck is exhausted, and the caller's set is mutated to match. Returns
// nil only when the pool itself is empty.
func (p *Pool) PickUnused(used map[int]struct{}) *Question {
	if len(p.questions) == 0 {
		return nil
	}

	available := make([]*Question, 0, len(p.questions))
	for i := range p.questions {
		if _, ok := used[p.questions[i].ID]; !ok {
			available = append(available, &p.questions[i])
		}
	}

	if len(available) == 0 {
		clear(used)
		available = available[:0]
		for i := range p.questions {
			available = append(available, &p.questions[i])
		}
	}

	return available[rand.Intn(len(available))]
}
