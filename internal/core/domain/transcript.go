package domain

import "time"

// Turn is one question and answer exchange in a session transcript.
// Turns are appended once and never mutated.
type Turn struct {
	// Question is the user's query.
	Question string `json:"question"`

	// Answer is the synthesized text.
	Answer string `json:"answer"`

	// Sources lists the cited source identifiers.
	Sources []string `json:"sources"`

	// AskedAt is when the answer was produced.
	AskedAt time.Time `json:"asked_at"`
}

// NewTurn builds a transcript turn from an answer.
func NewTurn(answer *Answer, at time.Time) Turn {
	sources := make([]string, len(answer.Sources))
	copy(sources, answer.Sources)
	return Turn{
		Question: answer.Query,
		Answer:   answer.Text,
		Sources:  sources,
		AskedAt:  at,
	}
}
