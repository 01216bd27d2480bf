package editor

import (
	"testing"

	"solar_registration/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjection_MainView(t *testing.T) {
	e := New()
	require.NoError(t, e.UpdateMain("name", "Plant"))

	p := e.Projection()

	assert.Equal(t, "main", p.View)
	assert.Nil(t, p.ViewIndex)
	assert.Empty(t, p.Tabs)
	assert.True(t, p.CanAddSub)
	assert.Equal(t, e.State().Main, p.Active)
	assert.Equal(t, uint64(1), p.Revision)
}

func TestProjection_TabsAndPartLists(t *testing.T) {
	e := editorWithSubs(t, 3)
	require.NoError(t, e.UpdateSubClient(1, "name", "Feeder North"))
	require.NoError(t, e.AddPartClient(0))
	require.NoError(t, e.AddPartClient(1))
	require.NoError(t, e.UpdateSubClient(1, "hasPartClients", true))
	require.NoError(t, e.SetActiveView(domain.SubView(1)))

	p := e.Projection()

	require.Len(t, p.Tabs, 3)
	assert.Equal(t, "Sub Client 1", p.Tabs[0].Label)
	assert.Equal(t, "Feeder North", p.Tabs[1].Label)
	assert.True(t, p.Tabs[1].Active)
	assert.False(t, p.Tabs[0].Active)
	assert.False(t, p.CanAddSub)

	require.NotNil(t, p.ViewIndex)
	assert.Equal(t, 1, *p.ViewIndex)
	assert.Equal(t, "sub", p.View)
	assert.Equal(t, e.State().SubClients[1], p.Active)

	require.Len(t, p.PartLists, 3)
	assert.Empty(t, p.PartLists[0].Parts, "flag off hides retained parts")
	assert.Len(t, p.PartLists[1].Parts, 1)
	assert.Len(t, p.Tree.SubClients[0].PartClients, 1)
}
