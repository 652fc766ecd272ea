package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCadence = errors.New("model: invalid task cadence")
	ErrInvalidMarker  = errors.New("model: invalid period marker")
)

const DefaultTaskName = "todo"

type Task struct {
	Name   string
	Done   bool
	Period Period
}

func NewTask(name string, period Period) Task {
	return Task{Name: name, Period: period}
}

func (t Task) Validate() error {
	return t.Period.Validate()
}

// Label is the row text hosts render: the name plus a cadence suffix.
func (t Task) Label() string {
	name := t.Name
	if strings.TrimSpace(name) == "" {
		name = DefaultTaskName
	}
	return fmt.Sprintf("%s [%s]", name, t.Period.Cadence().Suffix())
}
