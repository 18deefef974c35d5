package brand

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultHasKeywords(t *testing.T) {
	p := Default()
	require.NotEmpty(t, p.PrimaryKeywords)
	require.Contains(t, p.PrimaryKeywords, "custom ties")
	require.NotEmpty(t, p.Voice)
}

func TestLoadPartialProfileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brand.yaml")
	err := os.WriteFile(path, []byte("name: Testco\ntone_overall: Dry\n"), 0644)
	require.NoError(t, err)

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Testco", p.Name)
	require.Equal(t, "Dry", p.ToneOverall)
	// Unset fields keep defaults
	require.NotEmpty(t, p.Openers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brand.yaml")
	orig := Default()
	orig.Name = "RoundTrip"

	require.NoError(t, Save(orig, path))
	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "RoundTrip", got.Name)
	require.Equal(t, orig.PrimaryKeywords, got.PrimaryKeywords)
}
