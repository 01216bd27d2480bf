package domain

import "fmt"

// ViewKind discriminates the record shown by an ActiveView.
type ViewKind int

const (
	MainViewKind ViewKind = iota
	SubViewKind
)

// ActiveView selects the record currently presented for editing.
// Index is only meaningful for SubViewKind.
type ActiveView struct {
	Kind  ViewKind `json:"-"`
	Index int      `json:"-"`
}

// MainView selects the main client.
func MainView() ActiveView {
	return ActiveView{Kind: MainViewKind}
}

// SubView selects the sub client at index.
func SubView(index int) ActiveView {
	return ActiveView{Kind: SubViewKind, Index: index}
}

func (v ActiveView) IsMain() bool {
	return v.Kind == MainViewKind
}

func (v ActiveView) String() string {
	if v.IsMain() {
		return "main"
	}
	return fmt.Sprintf("sub[%d]", v.Index)
}
