package shared

import "strconv"

// CharacterID is a value object identifying the character that owns colonies
type CharacterID struct {
	value int64
}

// NewCharacterID creates a new CharacterID value object
func NewCharacterID(id int64) (CharacterID, error) {
	if id <= 0 {
		return CharacterID{}, NewValidationError("character_id", "must be positive")
	}
	return CharacterID{value: id}, nil
}

// MustNewCharacterID creates a CharacterID, panicking if invalid.
// Only for ids that already passed validation (database rows, test fixtures).
func MustNewCharacterID(id int64) CharacterID {
	characterID, err := NewCharacterID(id)
	if err != nil {
		panic(err)
	}
	return characterID
}

// Value returns the integer value of the CharacterID
func (c CharacterID) Value() int64 {
	return c.value
}

// String returns a string representation of the CharacterID
func (c CharacterID) String() string {
	return strconv.FormatInt(c.value, 10)
}

// Equals checks if two CharacterIDs are equal
func (c CharacterID) Equals(other CharacterID) bool {
	return c.value == other.value
}

// IsZero checks if the CharacterID is the zero value (uninitialized)
func (c CharacterID) IsZero() bool {
	return c.value == 0
}
