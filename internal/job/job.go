// Package job models the per-document pipeline lifecycle as an explicit
// linear state machine, so an illegal progression is a validation error
// instead of a silent typo.
package job

import "fmt"

// Status is one pipeline stage.
type Status string

const (
	StatusPending     Status = "pending"
	StatusOCR         Status = "ocr"
	StatusParsing     Status = "parsing"
	StatusRefining    Status = "refining"
	StatusTranslating Status = "translating"
	StatusExporting   Status = "exporting"
	StatusComplete    Status = "complete"
	StatusError       Status = "error"
)

// transitions is the monotonic progression table. Every stage may also move
// to StatusError; nothing leaves a terminal state. A pending job may enter
// the pipeline at any stage, since a run may cover only a suffix of it.
var transitions = map[Status][]Status{
	StatusPending:     {StatusOCR, StatusParsing, StatusRefining, StatusTranslating, StatusExporting},
	StatusOCR:         {StatusParsing},
	StatusParsing:     {StatusRefining, StatusTranslating, StatusExporting, StatusComplete},
	StatusRefining:    {StatusTranslating, StatusExporting, StatusComplete},
	StatusTranslating: {StatusExporting, StatusComplete},
	StatusExporting:   {StatusComplete},
}

// Parse converts a stored string to a Status.
func Parse(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusOCR, StatusParsing, StatusRefining,
		StatusTranslating, StatusExporting, StatusComplete, StatusError:
		return st, nil
	default:
		return "", fmt.Errorf("unknown job status %q", s)
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// CanTransition reports whether moving from s to next is legal. Every
// non-terminal state may fail into StatusError.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusError {
		return true
	}
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// Transition validates and returns the next status.
func (s Status) Transition(next Status) (Status, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("illegal job transition %s -> %s", s, next)
	}
	return next, nil
}
