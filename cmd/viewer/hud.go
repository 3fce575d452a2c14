package main

import (
	"fmt"
	"strings"
)

// statusLine collects the status fields shown in the window title.
type statusLine struct {
	fields []string
}

func (l *statusLine) Add(format string, args ...any) {
	l.fields = append(l.fields, fmt.Sprintf(format, args...))
}

func (l *statusLine) Clear() {
	l.fields = l.fields[:0]
}

func (l *statusLine) String() string {
	return strings.Join(l.fields, " | ")
}
