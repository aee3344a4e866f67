package core

// validation.go checks incoming records against a collection's field specs
// before they reach the store.
//
// Checks, in order:
//  1. Every key in the record is a declared column
//  2. Required fields are present and non-empty
//  3. Non-empty values parse as their declared type
//
// The first problem found is returned as a *ValidationError.

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/resale/internal/store"
)

// DateLayout is the stored format of every date column.
const DateLayout = "2006-01-02"

// normalizeRecord validates rec against specs and returns a copy with
// surrounding whitespace trimmed from every value.
func normalizeRecord(specs []FieldSpec, rec store.Record) (store.Record, error) {
	known := make(map[string]FieldSpec, len(specs))
	for _, spec := range specs {
		known[spec.Name] = spec
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := known[k]; !ok {
			return nil, &ValidationError{Field: k, Value: rec[k], Message: "unknown column"}
		}
	}

	out := make(store.Record, len(rec))
	for k, v := range rec {
		out[k] = strings.TrimSpace(v)
	}

	for _, spec := range specs {
		raw := out[spec.Name]
		if raw == "" {
			if spec.Required {
				return nil, &ValidationError{Field: spec.Name, Message: "required field is empty"}
			}
			continue
		}
		if err := ValidateCell(raw, spec); err != nil {
			return nil, &ValidationError{Field: spec.Name, Value: raw, Message: err.Error()}
		}
		if spec.Type == FieldID {
			id, _ := parseID(raw)
			out[spec.Name] = strconv.FormatInt(id, 10)
		}
	}
	return out, nil
}

// ValidateCell validates a single value against a field specification.
// Empty values always pass; required-ness is checked separately.
func ValidateCell(value string, spec FieldSpec) error {
	if value == "" {
		return nil
	}

	switch spec.Type {
	case FieldInteger:
		if _, err := parseCount(value); err != nil {
			return err
		}
	case FieldID:
		if _, err := parseID(value); err != nil {
			return err
		}
	case FieldNumeric:
		if _, err := ParseAmount(value); err != nil {
			return err
		}
	case FieldDate:
		if _, err := time.Parse(DateLayout, value); err != nil {
			return fmt.Errorf("invalid date %q (use YYYY-MM-DD)", value)
		}
	}
	return nil
}

// parseCount parses a non-negative whole number.
func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid whole number %q", s)
	}
	return n, nil
}

// parseID parses a record id: a whole number of 1 or more.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q (use a whole number of 1 or more)", s)
	}
	return id, nil
}
