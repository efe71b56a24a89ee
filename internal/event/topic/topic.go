package topic

import (
	"errors"
	"fmt"
	"strings"
)

// Topic represents a hierarchical event name using dot notation.
// Examples: "click", "click.foo.bar"
type Topic string

// Separator is the character used to separate topic segments.
const Separator = "."

// ErrInvalidTopic is returned when a topic is empty or has an empty segment.
var ErrInvalidTopic = errors.New("invalid topic")

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// SegmentCount returns the number of segments in the topic.
func (t Topic) SegmentCount() int {
	if t == "" {
		return 0
	}
	return strings.Count(string(t), Separator) + 1
}

// Child returns a child topic by appending a segment.
//
// Example: "click".Child("foo") -> "click.foo"
func (t Topic) Child(segment string) Topic {
	if t == "" {
		return Topic(segment)
	}
	return Topic(string(t) + Separator + segment)
}

// IsValid returns true if the topic is valid.
// A valid topic:
//   - Is not empty
//   - Does not start or end with a separator
//   - Does not contain consecutive separators
func (t Topic) IsValid() bool {
	return Validate(t) == nil
}

// Validate returns an error wrapping ErrInvalidTopic describing why t is not
// a valid topic, or nil.
func Validate(t Topic) error {
	s := string(t)
	switch {
	case s == "":
		return fmt.Errorf("%w: empty name", ErrInvalidTopic)
	case strings.HasPrefix(s, Separator):
		return fmt.Errorf("%w: %q starts with %q", ErrInvalidTopic, s, Separator)
	case strings.HasSuffix(s, Separator):
		return fmt.Errorf("%w: %q ends with %q", ErrInvalidTopic, s, Separator)
	case strings.Contains(s, Separator+Separator):
		return fmt.Errorf("%w: %q has an empty segment", ErrInvalidTopic, s)
	}
	return nil
}
