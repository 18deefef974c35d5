package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jayden9889/blogsmith/internal/generator"
	"github.com/jayden9889/blogsmith/internal/limiter"
	"github.com/jayden9889/blogsmith/internal/store"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(dir)
	require.NoError(t, err)
	return NewModel(Deps{
		Store:    s,
		Limiter:  limiter.New(dir, 10, 12),
		Provider: "test",
		Model:    "test-model",
		Version:  "dev",
	})
}

func key(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{}
}

func TestMenuNavigation(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, screenMenu, m.screen)

	// Enter opens the topic prompt (first menu entry).
	next, _ := m.Update(key("enter"))
	m = next.(Model)
	require.Equal(t, screenTopic, m.screen)

	// Esc returns to the menu.
	next, _ = m.Update(key("esc"))
	m = next.(Model)
	require.Equal(t, screenMenu, m.screen)
}

func TestDraftsScreenListsItems(t *testing.T) {
	m := newTestModel(t)
	_, err := m.deps.Store.SaveItem("A Post", "some body text", "topic")
	require.NoError(t, err)

	next, _ := m.openScreen(screenDrafts)
	m = next.(Model)
	require.Equal(t, screenDrafts, m.screen)
	require.Len(t, m.drafts.Items(), 1)
}

func TestEmptyTopicDoesNotGenerate(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.openScreen(screenTopic)
	m = next.(Model)

	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	require.Equal(t, screenTopic, m.screen)
	require.Nil(t, cmd)
}

func TestTweakScreenOpensFromPost(t *testing.T) {
	m := newTestModel(t)
	item, err := m.deps.Store.SaveItem("A Post", "some body text", "topic")
	require.NoError(t, err)
	m.current = item
	m.screen = screenPost

	next, _ := m.Update(key("t"))
	m = next.(Model)
	require.Equal(t, screenTweak, m.screen)

	// Empty instruction stays put.
	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	require.Equal(t, screenTweak, m.screen)
	require.Nil(t, cmd)

	next, _ = m.Update(key("esc"))
	m = next.(Model)
	require.Equal(t, screenPost, m.screen)
}

func TestTweakDoneUpdatesPreview(t *testing.T) {
	m := newTestModel(t)
	item, err := m.deps.Store.SaveItem("A Post", "wool body text", "topic")
	require.NoError(t, err)
	m.screen = screenGenerating

	next, _ := m.Update(tweakDoneMsg{item: item, res: generator.TweakResult{Method: "direct", ChangeRatio: 0.02}})
	m = next.(Model)
	require.Equal(t, screenPost, m.screen)
	require.Equal(t, item.ID, m.current.ID)
	require.Contains(t, m.status, "direct")
}

func TestRulesViewShowsRules(t *testing.T) {
	m := newTestModel(t)
	_, err := m.deps.Store.AddRule(store.RuleBannedWord, "cheap", "sounds low-end")
	require.NoError(t, err)

	out := m.rulesView()
	require.Contains(t, out, "cheap")
	require.Contains(t, out, "banned_word")
}

func TestStatsViewIncludesUsage(t *testing.T) {
	m := newTestModel(t)
	out := m.statsView()
	require.Contains(t, out, "Usage:")
	require.Contains(t, out, "test-model")
}
