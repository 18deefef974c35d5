package refs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectByOverlap(t *testing.T) {
	lib := NewLibrary([]Post{
		{Title: "Why school ties matter", Content: "School ties carry tradition and pride through generations."},
		{Title: "Picking corporate socks", Content: "Socks are the unsung hero of the corporate wardrobe."},
		{Title: "Printed versus woven", Content: "The printed tie and the woven tie serve different needs."},
	})

	got := lib.Select("school ties and tradition", 2)
	require.Len(t, got, 2)
	require.Equal(t, "Why school ties matter", got[0].Title)
}

func TestSelectFallsBackToRandom(t *testing.T) {
	lib := NewLibrary([]Post{
		{Title: "Alpha", Content: "one two three"},
		{Title: "Beta", Content: "four five six"},
	})

	got := lib.Select("zzz qqq", 1)
	require.Len(t, got, 1)
}

func TestSelectEmptyLibrary(t *testing.T) {
	lib := NewLibrary(nil)
	require.Nil(t, lib.Select("anything", 3))
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	lib, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Equal(t, 0, lib.Len())
}

func TestLoadParsesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	err := os.WriteFile(path, []byte(`[{"title":"A","content":"body"}]`), 0644)
	require.NoError(t, err)

	lib, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, lib.Len())
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json]`), 0644))
	_, err := Load(path)
	require.Error(t, err)
}
