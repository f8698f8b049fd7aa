package core

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewID returns a fresh identifier in ObjectID hex form. Every backend uses
// this format so that a malformed id means the same thing everywhere.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ParseID validates id and returns its ObjectID form.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// CanonicalID validates id and returns it in the lowercase hex form every
// store keys records by, so padded or uppercase input finds the same record.
func CanonicalID(id string) (string, error) {
	oid, err := ParseID(id)
	if err != nil {
		return "", err
	}
	return oid.Hex(), nil
}

// ValidateID reports ErrInvalidID for ids outside the store format.
func ValidateID(id string) error {
	_, err := ParseID(id)
	return err
}

// Account names one tenant partition.
type Account string

var accountPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// ParseAccount validates a partition name supplied by a caller.
func ParseAccount(name string) (Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError("collection_name", "collection name is required")
	}
	if !accountPattern.MatchString(name) || strings.HasPrefix(name, "system.") {
		return "", NewValidationError("collection_name", fmt.Sprintf("invalid collection name %q", name))
	}
	return Account(name), nil
}

func (a Account) String() string {
	return string(a)
}
