// Package interview defines the interview state machine of an application.
//
// Valid status graph:
//
//	pending ──schedule──► scheduled ──cancel──► pending
//	                        │    ▲
//	                        └────┘ reschedule
//
// Cancelling clears the date, time and meeting link.
package interview

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/smartserve-ai/smartserve/internal/model"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	// ErrInvalidTransition is returned for moves the state machine forbids.
	ErrInvalidTransition = errors.New("invalid interview transition")
	// ErrInvalidSlot is returned when date, time or link are missing or malformed.
	ErrInvalidSlot = errors.New("invalid interview slot")
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[model.InterviewStatus][]model.InterviewStatus{
	model.InterviewPending:   {model.InterviewScheduled},
	model.InterviewScheduled: {model.InterviewScheduled, model.InterviewPending},
}

// ParseStatus converts a raw string to a status. Empty means pending, which is
// how rows created before scheduling existed look.
func ParseStatus(s string) (model.InterviewStatus, error) {
	st := model.InterviewStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case "":
		return model.InterviewPending, nil
	case model.InterviewPending, model.InterviewScheduled:
		return st, nil
	}
	return "", fmt.Errorf("unknown interview status %q", s)
}

// IsTransitionAllowed reports whether moving from → to is permitted.
func IsTransitionAllowed(from, to model.InterviewStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Slot is the when and where of an interview.
type Slot struct {
	Date     string
	Time     string
	MeetLink string
}

// Validate checks the slot fields and returns them trimmed.
func (s Slot) Validate() (Slot, error) {
	s.Date = strings.TrimSpace(s.Date)
	s.Time = strings.TrimSpace(s.Time)
	s.MeetLink = strings.TrimSpace(s.MeetLink)

	if s.Date == "" || s.Time == "" || s.MeetLink == "" {
		return s, fmt.Errorf("%w: date, time and meeting link are required", ErrInvalidSlot)
	}
	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return s, fmt.Errorf("%w: date must look like YYYY-MM-DD", ErrInvalidSlot)
	}
	if _, err := time.Parse(TimeLayout, s.Time); err != nil {
		return s, fmt.Errorf("%w: time must look like HH:MM", ErrInvalidSlot)
	}
	u, err := url.Parse(s.MeetLink)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return s, fmt.Errorf("%w: meeting link must be an http(s) URL", ErrInvalidSlot)
	}

	return s, nil
}

// Schedule moves a pending or scheduled interview to scheduled at slot.
func Schedule(current model.Interview, slot Slot) (model.Interview, error) {
	from, err := ParseStatus(string(current.Status))
	if err != nil {
		return current, err
	}
	if !IsTransitionAllowed(from, model.InterviewScheduled) {
		return current, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, model.InterviewScheduled)
	}

	slot, err = slot.Validate()
	if err != nil {
		return current, err
	}

	return model.Interview{
		Status:   model.InterviewScheduled,
		Date:     slot.Date,
		Time:     slot.Time,
		MeetLink: slot.MeetLink,
	}, nil
}

// Cancel moves a scheduled interview back to pending and clears its slot.
func Cancel(current model.Interview) (model.Interview, error) {
	from, err := ParseStatus(string(current.Status))
	if err != nil {
		return current, err
	}
	if !IsTransitionAllowed(from, model.InterviewPending) {
		return current, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, model.InterviewPending)
	}

	return model.Interview{Status: model.InterviewPending}, nil
}
