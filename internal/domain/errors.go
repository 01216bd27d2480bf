package domain

import "fmt"

// InvalidPathError reports a field path that is malformed or names a field
// the target record does not have.
type InvalidPathError struct {
	Record string
	Path   string
}

func (e InvalidPathError) Error() string {
	return fmt.Sprintf("invalid field path %q for %s", e.Path, e.Record)
}

// ValueTypeError reports a value whose type does not match the field.
type ValueTypeError struct {
	Path string
	Want string
	Got  interface{}
}

func (e ValueTypeError) Error() string {
	return fmt.Sprintf("field %q expects a %s value, got %T", e.Path, e.Want, e.Got)
}

// IndexOutOfRangeError reports a stale or out-of-bounds positional index.
type IndexOutOfRangeError struct {
	Kind  string
	Index int
	Len   int
}

func (e IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0, %d)", e.Kind, e.Index, e.Len)
}

type CapacityExceededError struct {
	Limit int
}

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("cannot add more than %d sub clients", e.Limit)
}

type SessionNotFoundError struct {
	ID string
}

func (e SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}
