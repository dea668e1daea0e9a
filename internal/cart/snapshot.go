package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// StorageKey is the fixed key the cart snapshot lives under.
const StorageKey = "cart"

var (
	ErrMalformedSnapshot  = errors.New("malformed cart snapshot")
	ErrStorageUnavailable = errors.New("cart storage unavailable")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Encode serializes lines as a JSON array of {id,title,price,image,quantity}.
func Encode(lines []Line) (string, error) {
	if lines == nil {
		lines = []Line{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a stored snapshot. Anything that is not an array of valid
// lines with distinct ids is rejected with ErrMalformedSnapshot.
func Decode(raw string) ([]Line, error) {
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	seen := make(map[int]struct{}, len(lines))
	for i, l := range lines {
		if err := validate.Struct(l); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedSnapshot, i, err)
		}
		if _, dup := seen[l.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrMalformedSnapshot, l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	if lines == nil {
		lines = []Line{}
	}
	return lines, nil
}
