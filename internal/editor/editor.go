// internal/editor/editor.go

package editor

import (
	"context"
	"fmt"

	"solar_registration/internal/domain"
)

// Submitter receives a completed tree. It is the only way a tree leaves
// the editor.
type Submitter interface {
	Submit(ctx context.Context, tree domain.Tree) error
}

// Editor owns the live record tree of one session. It is not safe for
// concurrent use; callers serialise access.
type Editor struct {
	state    State
	revision uint64
}

// New creates an editor holding an empty tree with the main view active.
func New() *Editor {
	return &Editor{state: NewState()}
}

// State returns the current snapshot. Callers must treat it as read-only.
func (e *Editor) State() State {
	return e.state
}

// Revision increases by one on every successful change.
func (e *Editor) Revision() uint64 {
	return e.revision
}

func (e *Editor) UpdateMain(path string, value interface{}) error {
	return e.apply(e.state.UpdateMain(path, value))
}

func (e *Editor) AddSubClient() error {
	return e.apply(e.state.AddSubClient())
}

func (e *Editor) UpdateSubClient(index int, path string, value interface{}) error {
	return e.apply(e.state.UpdateSubClient(index, path, value))
}

func (e *Editor) RemoveSubClient(index int) error {
	return e.apply(e.state.RemoveSubClient(index))
}

func (e *Editor) AddPartClient(subIndex int) error {
	return e.apply(e.state.AddPartClient(subIndex))
}

func (e *Editor) UpdatePartClient(subIndex, partIndex int, field string, value interface{}) error {
	return e.apply(e.state.UpdatePartClient(subIndex, partIndex, field, value))
}

func (e *Editor) RemovePartClient(subIndex, partIndex int) error {
	return e.apply(e.state.RemovePartClient(subIndex, partIndex))
}

func (e *Editor) SetActiveView(view domain.ActiveView) error {
	return e.apply(e.state.SetActiveView(view))
}

// Submit hands a copy of the tree to s. The editor state is not changed
// whatever the outcome.
func (e *Editor) Submit(ctx context.Context, s Submitter) error {
	if err := s.Submit(ctx, e.state.Tree()); err != nil {
		return fmt.Errorf("submit failed: %w", err)
	}
	return nil
}

func (e *Editor) apply(next State, err error) error {
	if err != nil {
		return err
	}
	e.state = next
	e.revision++
	return nil
}
