package object

import (
	"fmt"
	"strings"
)

// maxOffset is the largest zone offset, in minutes, that ParseSignature reads
// back: 14 hours and 59 minutes.
const maxOffset = maxOffsetHours*60 + 59

// Validate reports whether s can be written by Encode and parsed back
// unchanged.
func (s Signature) Validate() error {
	if strings.ContainsAny(s.Name, "<>\n") {
		return fmt.Errorf("%w: name %q contains '<', '>' or newline", ErrInvalidField, s.Name)
	}
	if strings.TrimSpace(s.Name) != s.Name {
		return fmt.Errorf("%w: name %q has surrounding whitespace", ErrInvalidField, s.Name)
	}
	if strings.ContainsAny(s.Email, "<>\n") {
		return fmt.Errorf("%w: email %q contains '<', '>' or newline", ErrInvalidField, s.Email)
	}
	if strings.TrimSpace(s.Email) != s.Email {
		return fmt.Errorf("%w: email %q has surrounding whitespace", ErrInvalidField, s.Email)
	}
	if s.When.Offset < -maxOffset || s.When.Offset > maxOffset {
		return fmt.Errorf("%w: zone offset %d minutes is outside ±%s", ErrInvalidField, s.When.Offset, formatOffset(maxOffset)[1:])
	}
	return nil
}

func (h Header) validate() error {
	if h.Key == "" {
		return fmt.Errorf("%w: empty header key", ErrInvalidField)
	}
	if strings.ContainsAny(h.Key, " \n") {
		return fmt.Errorf("%w: header key %q contains a space or newline", ErrInvalidField, h.Key)
	}
	if strings.HasSuffix(h.Key, "\r") {
		return fmt.Errorf("%w: header key %q ends with a carriage return", ErrInvalidField, h.Key)
	}
	for line := range strings.SplitSeq(h.Value, "\n") {
		if strings.HasSuffix(line, "\r") {
			return fmt.Errorf("%w: header %s has a line ending in a carriage return", ErrInvalidField, h.Key)
		}
	}
	return nil
}

func (f CommitFields) validate() error {
	if err := f.Author.Validate(); err != nil {
		return fmt.Errorf("author: %w", err)
	}
	if err := f.Committer.Validate(); err != nil {
		return fmt.Errorf("committer: %w", err)
	}
	for _, h := range f.ExtraHeaders {
		if err := h.validate(); err != nil {
			return err
		}
	}
	return nil
}
