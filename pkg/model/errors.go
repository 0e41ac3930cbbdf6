package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConstruction matches every *ConstructionError via errors.Is.
	ErrConstruction = errors.New("model: invalid definition")
	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("model: invalid configuration")
)

// ConstructionError reports a malformed field, container or form definition.
// It is raised while building the model, never while validating data.
type ConstructionError struct {
	Field     string
	Attribute string
	Reason    string
}

func (e *ConstructionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("model: invalid %s: %s", e.Attribute, e.Reason)
	}
	return fmt.Sprintf("model: field %q: invalid %s: %s", e.Field, e.Attribute, e.Reason)
}

// Is lets errors.Is(err, ErrConstruction) succeed.
func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstruction
}

// ConfigurationError reports a caller bug: an unknown field reference, an
// out of range step index or an invalid validation scope.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return "model: " + e.Reason
	}
	return fmt.Sprintf("model: field %q: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrConfiguration) succeed.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func constructionErr(field, attribute, format string, args ...any) *ConstructionError {
	return &ConstructionError{
		Field:     field,
		Attribute: attribute,
		Reason:    fmt.Sprintf(format, args...),
	}
}

// Configurationf builds a *ConfigurationError. Other packages use it for scope
// and step index failures so every configuration problem shares one type.
func Configurationf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}
