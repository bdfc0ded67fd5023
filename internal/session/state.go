package session

import (
	"errors"
	"fmt"
	"strings"
)

// Section is one of the destinations a user can navigate to.
type Section string

const (
	SectionAsk      Section = "ask"
	SectionSQL      Section = "sql"
	SectionTables   Section = "tables"
	SectionDescribe Section = "describe"
	SectionHealth   Section = "health"
)

var (
	// ErrBusy is returned by Begin while a request is already in flight.
	ErrBusy = errors.New("a request is already in progress")

	// ErrEmptyInput rejects a blank submission before it leaves the client.
	ErrEmptyInput = errors.New("input is empty")
)

var sectionTitles = map[Section]string{
	SectionAsk:      "Ask",
	SectionSQL:      "SQL",
	SectionTables:   "Tables",
	SectionDescribe: "Describe",
	SectionHealth:   "Health",
}

// Sections lists every section in navigation order.
func Sections() []Section {
	return []Section{SectionAsk, SectionSQL, SectionTables, SectionDescribe, SectionHealth}
}

// ParseSection accepts a section name in any case.
func ParseSection(s string) (Section, error) {
	sec := Section(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := sectionTitles[sec]; !ok {
		return "", fmt.Errorf("unknown section %q", s)
	}
	return sec, nil
}

// Title is the display name of the section.
func (s Section) Title() string {
	if t, ok := sectionTitles[s]; ok {
		return t
	}
	return string(s)
}

// TakesInput reports whether the section needs user input to run.
func (s Section) TakesInput() bool {
	return s == SectionAsk || s == SectionSQL || s == SectionDescribe
}

// State is the UI-facing view of one session. Transitions return a new
// value; the receiver is never modified.
type State struct {
	Section Section
	Loading bool
	Output  *Output
}

// NewState starts on the ask section.
func NewState() State {
	return State{Section: SectionAsk}
}

// Navigate switches section and drops the current output.
func (s State) Navigate(sec Section) State {
	s.Section = sec
	s.Output = nil
	return s
}

// Begin marks a request as in flight.
func (s State) Begin() (State, error) {
	if s.Loading {
		return s, ErrBusy
	}
	s.Loading = true
	return s, nil
}

// Finish ends the in-flight request. Output for a section the user has
// since navigated away from is discarded.
func (s State) Finish(out Output) State {
	s.Loading = false
	if out.Section != s.Section {
		return s
	}
	s.Output = &out
	return s
}

// Clear drops the output but keeps the section.
func (s State) Clear() State {
	s.Output = nil
	return s
}
