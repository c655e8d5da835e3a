package types

import (
	"fmt"
	"strings"
)

// JobInputKind classifies the raw job input.
type JobInputKind string

// JobInputKind values
const (
	JobInputTitle JobInputKind = "title"
	JobInputURL   JobInputKind = "url"
	JobInputText  JobInputKind = "text"
)

// ParseJobInputKind converts a string into a JobInputKind.
func ParseJobInputKind(s string) (JobInputKind, error) {
	switch k := JobInputKind(strings.ToLower(strings.TrimSpace(s))); k {
	case JobInputTitle, JobInputURL, JobInputText:
		return k, nil
	default:
		return "", fmt.Errorf("unknown job input kind %q", s)
	}
}

func (k JobInputKind) String() string {
	return strings.ToUpper(string(k))
}
