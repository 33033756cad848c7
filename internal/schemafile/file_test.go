package schemafile

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/commonapply/internal/types"
)

const yamlDoc = `
fields:
  - id: program
    type: select
    label: Program
    options: [BSc, MSc]
  - id: thesis
    type: textarea
    label: Thesis title
    section: acad
    conditionalLogic:
      - action: show
        logic: and
        conditions:
          - field: program
            operator: equals
            value: MSc
  - id: choice
    type: radio
    label: Pick one
sections:
  - id: acad
    title: Academics
formStyling:
  layout: two-column
`

func sample() types.Schema {
	return types.Schema{
		Fields: []types.Field{
			{ID: "name", Type: types.FieldText, Label: "Name", Required: true, Styling: types.DefaultFieldStyling()},
			{ID: "level", Type: types.FieldSelect, Label: "Level", Options: []string{"A", "B"}},
		},
		Sections: []types.Section{{ID: "s1", Title: "One"}},
		Styling:  types.FormStyling{Layout: types.LayoutThreeColumn},
	}
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatOf("form.yaml"))
	assert.Equal(t, FormatYAML, FormatOf("dir/FORM.YML"))
	assert.Equal(t, FormatJSON, FormatOf("form.json"))
	assert.Equal(t, FormatJSON, FormatOf("form"))
}

func TestDecodeYAML(t *testing.T) {
	s, err := Decode([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)

	require.Len(t, s.Fields, 3)
	assert.Equal(t, []string{"BSc", "MSc"}, s.Fields[0].Options)
	require.Len(t, s.Fields[1].ConditionalLogic, 1)
	cond := s.Fields[1].ConditionalLogic[0].Conditions[0]
	assert.Equal(t, "program", cond.Field)
	assert.Equal(t, "MSc", cond.Value)
	assert.Equal(t, types.DefaultOptions(), s.Fields[2].Options, "decoded schemas are normalized")
	assert.Equal(t, types.LayoutTwoColumn, s.Styling.Layout)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte(`{"fields": 3}`), FormatJSON)
	assert.Error(t, err)
	_, err = Decode([]byte("fields: [\n"), FormatYAML)
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"form.json", "form.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "nested", name)
			require.NoError(t, Save(path, sample()))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, sample().Fields, got.Fields)
			assert.Equal(t, sample().Sections, got.Sections)
			assert.Equal(t, sample().Styling, got.Styling)
		})
	}

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestToJSONKeepsUnknownKeys(t *testing.T) {
	out, err := ToJSON([]byte("fields: []\ntheme: dark\n"), FormatYAML)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields": [], "theme": "dark"}`, string(out))

	raw := []byte(`{"fields": []}`)
	out, err = ToJSON(raw, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.json")
	require.NoError(t, Save(path, sample()))

	var (
		mu   sync.Mutex
		seen []types.Schema
	)
	w, err := NewWatcher(path, 20*time.Millisecond, func(s types.Schema, err error) {
		if err != nil {
			return
		}
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})
	require.NoError(t, err)
	w.Start()
	t.Cleanup(func() { _ = w.Stop() })

	updated := sample()
	updated.Fields[0].Label = "Full name"
	require.NoError(t, Save(path, updated))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1].Fields[0].Label == "Full name"
	}, 5*time.Second, 20*time.Millisecond)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop(), "stop is idempotent")
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "form.json")
	require.NoError(t, Save(path, sample()))

	w, err := NewWatcher(path, 10*time.Millisecond, nil)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, w.Reloads())
}
