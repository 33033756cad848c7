package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/commonapply/internal/types"
)

func TestSession_RemoveSelectedFieldClearsSelection(t *testing.T) {
	s := NewSession(newEditor(t, types.FieldText, types.FieldEmail))
	require.True(t, s.Select("f2"))
	require.True(t, s.SetTab(TabStyle))

	s.RemoveField("f1")
	assert.Equal(t, Selection{FieldID: "f2", Tab: TabStyle}, s.Selection())

	s.RemoveField("f2")
	assert.Equal(t, Selection{Tab: TabBasic}, s.Selection())
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestSession_SelectUnknownIsIgnored(t *testing.T) {
	s := NewSession(newEditor(t, types.FieldText))
	s.Select("f1")
	assert.False(t, s.Select("ghost"))
	assert.Equal(t, "f1", s.Selection().FieldID)

	assert.False(t, s.SetTab("colors"))
	assert.True(t, s.Select(""))
	assert.Empty(t, s.Selection().FieldID)
}

func TestSession_SelectingAnotherFieldResetsTab(t *testing.T) {
	s := NewSession(newEditor(t, types.FieldText, types.FieldText))
	s.Select("f1")
	s.SetTab(TabAdvanced)
	s.Select("f1")
	assert.Equal(t, TabAdvanced, s.Selection().Tab)
	s.Select("f2")
	assert.Equal(t, Selection{FieldID: "f2", Tab: TabBasic}, s.Selection())
}

func TestSession_ApplyRemoveClearsSelection(t *testing.T) {
	s := NewSession(newEditor(t, types.FieldText))
	s.Select("f1")
	out, err := s.Apply(Command{Op: OpRemoveField, ID: "f1"})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Empty(t, s.Selection().FieldID)
}

func TestApply(t *testing.T) {
	e := newEditor(t)

	out, err := e.Apply(Command{Op: OpAddField, FieldType: types.FieldRadio})
	require.NoError(t, err)
	require.NotNil(t, out.Field)
	assert.Equal(t, "f1", out.Field.ID)

	label := "Preferred campus"
	out, err = e.Apply(Command{Op: OpUpdateField, ID: "f1", Field: &FieldPatch{Label: &label}})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, "Preferred campus", out.Field.Label)

	out, err = e.Apply(Command{Op: OpAddOption, ID: "f1"})
	require.NoError(t, err)
	assert.Len(t, out.Field.Options, 3)

	out, err = e.Apply(Command{Op: OpDuplicateField, ID: "f1"})
	require.NoError(t, err)
	assert.Equal(t, "Preferred campus (Copy)", out.Field.Label)

	out, err = e.Apply(Command{Op: OpReorder, From: 1, To: 0})
	require.NoError(t, err)
	assert.True(t, out.Changed)

	out, err = e.Apply(Command{Op: OpAddSection})
	require.NoError(t, err)
	require.NotNil(t, out.Section)

	out, err = e.Apply(Command{Op: OpUpdateFormStyling, FormStyling: &FormStylingPatch{Layout: types.LayoutThreeColumn}})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, 3, e.FormStyling().Columns())

	out, err = e.Apply(Command{Op: OpRemoveField, ID: "ghost"})
	require.NoError(t, err)
	assert.False(t, out.Changed)
}

func TestApply_Errors(t *testing.T) {
	e := newEditor(t, types.FieldText)
	before := e.Schema()

	_, err := e.Apply(Command{Op: "explode"})
	assert.ErrorContains(t, err, "unknown editor op")
	_, err = e.Apply(Command{Op: OpAddField, FieldType: "hologram"})
	assert.Error(t, err)
	_, err = e.Apply(Command{Op: OpUpdateField, ID: "f1"})
	assert.Error(t, err)
	_, err = e.Apply(Command{Op: OpUpdateSection, ID: "s"})
	assert.Error(t, err)

	assert.Equal(t, before, e.Schema())
}
