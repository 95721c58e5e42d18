package task

import (
	"fmt"
	"strconv"

	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/value"
)

// NewSequence builds a loop sequence. count, start and end may each be nil,
// an int or a string (e.g. an expression); ints are rendered as strings.
func NewSequence(count, start, end any, format string) (*model.Sequence, error) {
	c, err := sequenceBound("count", count)
	if err != nil {
		return nil, err
	}
	s, err := sequenceBound("start", start)
	if err != nil {
		return nil, err
	}
	e, err := sequenceBound("end", end)
	if err != nil {
		return nil, err
	}
	if c != "" && e != "" {
		return nil, fmt.Errorf("sequence count and end: %w", ErrConflict)
	}
	return &model.Sequence{Count: c, Start: s, End: e, Format: format}, nil
}

func sequenceBound(field string, v any) (string, error) {
	switch b := v.(type) {
	case nil:
		return "", nil
	case int:
		return strconv.Itoa(b), nil
	case int64:
		return strconv.FormatInt(b, 10), nil
	case string:
		return b, nil
	}
	return "", fmt.Errorf("sequence %s %T: %w", field, v, value.ErrShape)
}
