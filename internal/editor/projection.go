package editor

import (
	"fmt"

	"solar_registration/internal/domain"
)

// Tab is the label of one sub-client tab.
type Tab struct {
	Index  int    `json:"index"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// PartList is the part-client table of one sub client. Parts is empty
// while the sub client has HasPartClients switched off.
type PartList struct {
	SubIndex int                 `json:"subIndex"`
	Parts    []domain.PartClient `json:"parts"`
}

// Projection is the read model handed to the rendering layer.
type Projection struct {
	Revision  uint64      `json:"revision"`
	View      string      `json:"view"`
	ViewIndex *int        `json:"viewIndex,omitempty"`
	Tabs      []Tab       `json:"tabs"`
	Active    interface{} `json:"active"`
	PartLists []PartList  `json:"partLists"`
	CanAddSub bool        `json:"canAddSub"`
	Tree      domain.Tree `json:"tree"`
}

// Projection builds the read model of the current state.
func (e *Editor) Projection() Projection {
	tree := e.state.Tree()
	view := e.state.View

	p := Projection{
		Revision:  e.revision,
		View:      "main",
		Tabs:      make([]Tab, len(tree.SubClients)),
		PartLists: make([]PartList, 0, len(tree.SubClients)),
		CanAddSub: len(tree.SubClients) < domain.MaxSubClients,
		Tree:      tree,
		Active:    tree.MainClient,
	}

	if !view.IsMain() {
		idx := view.Index
		p.View = "sub"
		p.ViewIndex = &idx
		p.Active = tree.SubClients[idx]
	}

	for i, sub := range tree.SubClients {
		p.Tabs[i] = Tab{
			Index:  i,
			Label:  TabLabel(i, sub),
			Active: !view.IsMain() && view.Index == i,
		}
		parts := []domain.PartClient{}
		if sub.HasPartClients {
			parts = sub.PartClients
		}
		p.PartLists = append(p.PartLists, PartList{SubIndex: i, Parts: parts})
	}

	return p
}

// TabLabel names a sub-client tab by its name, falling back to position.
func TabLabel(index int, sub domain.SubClient) string {
	if sub.Name != "" {
		return sub.Name
	}
	return fmt.Sprintf("Sub Client %d", index+1)
}
