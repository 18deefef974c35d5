package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckOpenAICompat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"llama3.2"},{"id":"qwen3"}]}`))
	}))
	defer srv.Close()

	s := Check(context.Background(), "openai", srv.URL, "")
	require.True(t, s.Reachable)
	require.Equal(t, []string{"llama3.2", "qwen3"}, s.Models)
}

func TestCheckUnknownProvider(t *testing.T) {
	s := Check(context.Background(), "carrier-pigeon", "", "")
	require.False(t, s.Reachable)
	require.Contains(t, s.Error, "unknown provider type")
}

func TestCheckModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"llama3.2"}]}`))
	}))
	defer srv.Close()

	require.NoError(t, CheckModel(context.Background(), "openai", srv.URL, "", "llama3.2"))
	err := CheckModel(context.Background(), "openai", srv.URL, "", "missing-model")
	require.Error(t, err)
	require.Contains(t, err.Error(), "llama3.2")
}

func TestCheckData(t *testing.T) {
	dir := t.TempDir()
	checks := CheckData(dir)
	require.Len(t, checks, 2)
	for _, c := range checks {
		require.True(t, c.OK, c.Name)
	}

	// A corrupt store file is reported, not fatal.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "generated_posts.json"), []byte(`{bad`), 0644))
	checks = CheckData(dir)
	require.False(t, checks[1].OK)
	require.NotEmpty(t, checks[1].Error)
}
