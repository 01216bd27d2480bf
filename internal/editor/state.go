// internal/editor/state.go
// State transitions of the record tree. Every transition returns a new State
// and leaves its receiver untouched, so a failed call has no effect.

package editor

import (
	"solar_registration/internal/domain"
	"solar_registration/internal/mapper"
)

// State is one immutable snapshot of the editor.
type State struct {
	Main       domain.MainClient
	SubClients []domain.SubClient
	View       domain.ActiveView
}

// NewState returns the initial state: an empty main client, no sub
// clients, and the main view selected.
func NewState() State {
	return State{
		Main:       domain.EmptyMainClient(),
		SubClients: []domain.SubClient{},
		View:       domain.MainView(),
	}
}

func (s State) UpdateMain(path string, value interface{}) (State, error) {
	main, err := mapper.SetMainField(s.Main, path, value)
	if err != nil {
		return s, err
	}
	s.Main = main
	return s, nil
}

// AddSubClient appends an empty sub client and focuses it.
func (s State) AddSubClient() (State, error) {
	if len(s.SubClients) >= domain.MaxSubClients {
		return s, domain.CapacityExceededError{Limit: domain.MaxSubClients}
	}

	subs := make([]domain.SubClient, len(s.SubClients), len(s.SubClients)+1)
	copy(subs, s.SubClients)
	s.SubClients = append(subs, domain.EmptySubClient())
	s.View = domain.SubView(len(s.SubClients) - 1)
	return s, nil
}

func (s State) UpdateSubClient(index int, path string, value interface{}) (State, error) {
	if err := s.checkSub(index); err != nil {
		return s, err
	}

	sub, err := mapper.SetSubField(s.SubClients[index], path, value)
	if err != nil {
		return s, err
	}
	return s.withSub(index, sub), nil
}

// RemoveSubClient drops the sub client at index together with its part
// clients. Later sub clients shift down and the main view is selected.
func (s State) RemoveSubClient(index int) (State, error) {
	if err := s.checkSub(index); err != nil {
		return s, err
	}

	subs := make([]domain.SubClient, 0, len(s.SubClients)-1)
	subs = append(subs, s.SubClients[:index]...)
	subs = append(subs, s.SubClients[index+1:]...)
	s.SubClients = subs
	s.View = domain.MainView()
	return s, nil
}

func (s State) AddPartClient(subIndex int) (State, error) {
	if err := s.checkSub(subIndex); err != nil {
		return s, err
	}

	sub := s.SubClients[subIndex].Clone()
	sub.PartClients = append(sub.PartClients, domain.EmptyPartClient())
	return s.withSub(subIndex, sub), nil
}

func (s State) UpdatePartClient(subIndex, partIndex int, field string, value interface{}) (State, error) {
	if err := s.checkPart(subIndex, partIndex); err != nil {
		return s, err
	}

	sub := s.SubClients[subIndex]
	part, err := mapper.SetPartField(sub.PartClients[partIndex], field, value)
	if err != nil {
		return s, err
	}

	sub = sub.Clone()
	sub.PartClients[partIndex] = part
	return s.withSub(subIndex, sub), nil
}

func (s State) RemovePartClient(subIndex, partIndex int) (State, error) {
	if err := s.checkPart(subIndex, partIndex); err != nil {
		return s, err
	}

	sub := s.SubClients[subIndex]
	parts := make([]domain.PartClient, 0, len(sub.PartClients)-1)
	parts = append(parts, sub.PartClients[:partIndex]...)
	parts = append(parts, sub.PartClients[partIndex+1:]...)
	sub.PartClients = parts
	return s.withSub(subIndex, sub), nil
}

func (s State) SetActiveView(view domain.ActiveView) (State, error) {
	if !view.IsMain() {
		if err := s.checkSub(view.Index); err != nil {
			return s, err
		}
	}
	s.View = view
	return s, nil
}

// Tree returns a deep copy of the record hierarchy.
func (s State) Tree() domain.Tree {
	return domain.Tree{MainClient: s.Main, SubClients: s.SubClients}.Clone()
}

// withSub returns s with a fresh sub-client slice holding sub at index.
func (s State) withSub(index int, sub domain.SubClient) State {
	subs := make([]domain.SubClient, len(s.SubClients))
	copy(subs, s.SubClients)
	subs[index] = sub
	s.SubClients = subs
	return s
}

func (s State) checkSub(index int) error {
	if index < 0 || index >= len(s.SubClients) {
		return domain.IndexOutOfRangeError{Kind: "sub client", Index: index, Len: len(s.SubClients)}
	}
	return nil
}

func (s State) checkPart(subIndex, partIndex int) error {
	if err := s.checkSub(subIndex); err != nil {
		return err
	}
	n := len(s.SubClients[subIndex].PartClients)
	if partIndex < 0 || partIndex >= n {
		return domain.IndexOutOfRangeError{Kind: "part client", Index: partIndex, Len: n}
	}
	return nil
}
