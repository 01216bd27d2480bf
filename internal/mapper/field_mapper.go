// internal/mapper/field_mapper.go
// Applies single-field updates addressed by "field" or "group.field" paths.

package mapper

import (
	"maps"
	"slices"
	"strings"

	"solar_registration/internal/domain"
)

// PathSeparator splits a group name from a field name.
const PathSeparator = "."

// FieldSpec is a pre-compiled setter for one field of R.
// Exactly one of SetString or SetBool is non-nil.
type FieldSpec[R any] struct {
	SetString func(rec *R, value string)
	SetBool   func(rec *R, value bool)
}

// Schema is the compiled field table of one record type.
type Schema[R any] struct {
	Record string
	Fields map[string]FieldSpec[R]
	Groups map[string]func(rec *R) *domain.MeterDetails
}

// SetField returns a copy of record with the field at path replaced by value.
// record itself is never modified; on error it is returned as given.
func SetField[R any](s *Schema[R], record R, path string, value interface{}) (R, error) {
	group, field, nested := strings.Cut(path, PathSeparator)
	if group == "" || (nested && (field == "" || strings.Contains(field, PathSeparator))) {
		return record, domain.InvalidPathError{Record: s.Record, Path: path}
	}

	updated := record
	if !nested {
		spec, ok := s.Fields[path]
		if !ok {
			return record, domain.InvalidPathError{Record: s.Record, Path: path}
		}
		if err := spec.apply(&updated, path, value); err != nil {
			return record, err
		}
		return updated, nil
	}

	groupOf, ok := s.Groups[group]
	if !ok {
		return record, domain.InvalidPathError{Record: s.Record, Path: path}
	}
	setMeter, ok := meterFields[field]
	if !ok {
		return record, domain.InvalidPathError{Record: s.Record, Path: path}
	}
	str, ok := value.(string)
	if !ok {
		return record, domain.ValueTypeError{Path: path, Want: "string", Got: value}
	}

	// MeterDetails is a value type, so this writes into updated's own copy.
	setMeter(groupOf(&updated), str)
	return updated, nil
}

func (f FieldSpec[R]) apply(rec *R, path string, value interface{}) error {
	if f.SetBool != nil {
		b, ok := value.(bool)
		if !ok {
			return domain.ValueTypeError{Path: path, Want: "boolean", Got: value}
		}
		f.SetBool(rec, b)
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return domain.ValueTypeError{Path: path, Want: "string", Got: value}
	}
	f.SetString(rec, s)
	return nil
}

// Paths lists every valid path of the schema in sorted order.
func (s *Schema[R]) Paths() []string {
	paths := slices.Collect(maps.Keys(s.Fields))
	for group := range s.Groups {
		for field := range meterFields {
			paths = append(paths, group+PathSeparator+field)
		}
	}
	slices.Sort(paths)
	return paths
}

// IsBool reports whether path addresses a boolean field.
func (s *Schema[R]) IsBool(path string) bool {
	spec, ok := s.Fields[path]
	return ok && spec.SetBool != nil
}

// SetMainField applies a path update to a main client.
func SetMainField(rec domain.MainClient, path string, value interface{}) (domain.MainClient, error) {
	return SetField(MainClientSchema, rec, path, value)
}

// SetSubField applies a path update to a sub client.
func SetSubField(rec domain.SubClient, path string, value interface{}) (domain.SubClient, error) {
	return SetField(SubClientSchema, rec, path, value)
}

// SetPartField applies a single-level update to a part client.
func SetPartField(rec domain.PartClient, field string, value interface{}) (domain.PartClient, error) {
	return SetField(PartClientSchema, rec, field, value)
}
