// Package tui is the interactive terminal frontend: generate posts,
// browse drafts, manage rules, and watch the usage budget without
// memorizing subcommands.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jayden9889/blogsmith/internal/generator"
	"github.com/jayden9889/blogsmith/internal/limiter"
	"github.com/jayden9889/blogsmith/internal/store"
)

type screen int

const (
	screenMenu screen = iota
	screenTopic
	screenGenerating
	screenPost
	screenTweak
	screenDrafts
	screenRules
	screenStats
)

// Deps wires the app to the rest of the system.
type Deps struct {
	Store     *store.Store
	Generator *generator.Generator
	Limiter   *limiter.FileLimiter
	Provider  string
	Model     string
	Version   string
}

type menuItem struct {
	title, desc string
	target      screen
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

type draftItem struct {
	item store.Item
}

func (d draftItem) Title() string { return d.item.Title }
func (d draftItem) Description() string {
	return fmt.Sprintf("%s · %d words · %s", d.item.Status, d.item.WordCount, d.item.CreatedAt.Format("Jan 2 15:04"))
}
func (d draftItem) FilterValue() string { return d.item.Title }

type generateDoneMsg struct {
	result generator.Result
	err    error
}

type tweakDoneMsg struct {
	item store.Item
	res  generator.TweakResult
	err  error
}

type Model struct {
	deps   Deps
	screen screen
	width  int
	height int

	menu     list.Model
	drafts   list.Model
	topic    textinput.Model
	edit     textinput.Model
	spin     spinner.Model
	preview  viewport.Model
	renderer *glamour.TermRenderer

	current store.Item
	result  *generator.Result
	status  string
	err     error
}

func NewModel(deps Deps) Model {
	items := []list.Item{
		menuItem{title: "Generate", desc: "Write a new post about a topic", target: screenTopic},
		menuItem{title: "Drafts", desc: "Browse, preview, and approve posts", target: screenDrafts},
		menuItem{title: "Rules", desc: "Active content preferences", target: screenRules},
		menuItem{title: "Stats", desc: "Memory and usage overview", target: screenStats},
	}
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(Teal).BorderForeground(Teal)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(DimTeal).BorderForeground(Teal)

	menu := list.New(items, d, 40, 14)
	menu.Title = "blogsmith"
	menu.SetShowHelp(false)
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	menu.Styles.Title = TitleStyle

	drafts := list.New(nil, d, 60, 18)
	drafts.Title = "Drafts"
	drafts.SetShowHelp(false)
	drafts.SetShowStatusBar(false)
	drafts.Styles.Title = TitleStyle

	ti := textinput.New()
	ti.Placeholder = "What should the post be about?"
	ti.CharLimit = 200
	ti.Width = 60

	ed := textinput.New()
	ed.Placeholder = `e.g. change "silk" to "wool"`
	ed.CharLimit = 200
	ed.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)

	return Model{
		deps:     deps,
		screen:   screenMenu,
		menu:     menu,
		drafts:   drafts,
		topic:    ti,
		edit:     ed,
		spin:     sp,
		preview:  viewport.New(100, 24),
		renderer: renderer,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.preview.Width = msg.Width - 4
		m.preview.Height = msg.Height - 6
		m.menu.SetSize(msg.Width-4, msg.Height-6)
		m.drafts.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case generateDoneMsg:
		m.screen = screenPost
		if msg.err != nil {
			m.err = msg.err
			m.result = nil
			return m, nil
		}
		m.err = nil
		m.result = &msg.result
		if msg.result.State != generator.StateRejected {
			m.current = msg.result.Item
		}
		m.setPreview(m.previewTitle(), m.previewBody())
		return m, nil

	case tweakDoneMsg:
		m.screen = screenPost
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.current = msg.item
		m.result = nil
		m.status = fmt.Sprintf("edited via %s (%.1f%% changed)", msg.res.Method, msg.res.ChangeRatio*100)
		m.setPreview(msg.item.Title, msg.item.Body)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case screenMenu:
		switch key {
		case "q", "esc":
			return m, tea.Quit
		case "enter":
			if it, ok := m.menu.SelectedItem().(menuItem); ok {
				return m.openScreen(it.target)
			}
		}
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd

	case screenTopic:
		switch key {
		case "esc":
			m.screen = screenMenu
			return m, nil
		case "enter":
			topic := strings.TrimSpace(m.topic.Value())
			if topic == "" {
				return m, nil
			}
			m.screen = screenGenerating
			m.status = "Writing about " + topic
			return m, tea.Batch(m.spin.Tick, m.generateCmd(topic))
		}
		var cmd tea.Cmd
		m.topic, cmd = m.topic.Update(msg)
		return m, cmd

	case screenGenerating:
		// Generation runs in its own goroutine; nothing to do but wait.
		return m, nil

	case screenPost:
		switch key {
		case "esc", "q":
			m.screen = screenMenu
			return m, nil
		case "a":
			if m.current.ID != "" {
				item, err := m.deps.Store.UpdateItemStatus(m.current.ID, store.StatusApproved)
				if err != nil {
					m.err = err
				} else {
					m.current = item
					m.status = "Approved " + item.Title
				}
			}
			return m, nil
		case "t":
			if m.current.ID != "" {
				m.screen = screenTweak
				m.edit.SetValue("")
				m.edit.Focus()
				return m, textinput.Blink
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd

	case screenTweak:
		switch key {
		case "esc":
			m.screen = screenPost
			return m, nil
		case "enter":
			instruction := strings.TrimSpace(m.edit.Value())
			if instruction == "" {
				return m, nil
			}
			m.screen = screenGenerating
			m.status = "Applying edit"
			return m, tea.Batch(m.spin.Tick, m.tweakCmd(m.current, instruction))
		}
		var cmd tea.Cmd
		m.edit, cmd = m.edit.Update(msg)
		return m, cmd

	case screenDrafts:
		switch key {
		case "esc", "q":
			m.screen = screenMenu
			return m, nil
		case "enter":
			if it, ok := m.drafts.SelectedItem().(draftItem); ok {
				m.current = it.item
				m.result = nil
				m.err = nil
				m.status = ""
				m.setPreview(it.item.Title, it.item.Body)
				m.screen = screenPost
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.drafts, cmd = m.drafts.Update(msg)
		return m, cmd

	case screenRules, screenStats:
		switch key {
		case "esc", "q", "enter":
			m.screen = screenMenu
		}
		return m, nil
	}
	return m, nil
}

func (m Model) openScreen(target screen) (tea.Model, tea.Cmd) {
	m.screen = target
	m.err = nil
	switch target {
	case screenTopic:
		m.topic.SetValue("")
		m.topic.Focus()
		return m, textinput.Blink
	case screenDrafts:
		items := m.deps.Store.Items()
		listItems := make([]list.Item, len(items))
		for i, it := range items {
			listItems[i] = draftItem{item: it}
		}
		m.drafts.SetItems(listItems)
	}
	return m, nil
}

func (m *Model) generateCmd(topic string) tea.Cmd {
	g := m.deps.Generator
	return func() tea.Msg {
		res, err := g.Generate(context.Background(), topic, generator.Options{AllowDuplicates: true})
		return generateDoneMsg{result: res, err: err}
	}
}

func (m *Model) tweakCmd(item store.Item, instruction string) tea.Cmd {
	g := m.deps.Generator
	s := m.deps.Store
	return func() tea.Msg {
		res, err := g.Tweak(context.Background(), item.Title, item.Body, instruction)
		if err != nil {
			return tweakDoneMsg{err: err}
		}
		updated, err := s.UpdateItemContent(item.ID, res.Title, res.Body)
		if err != nil {
			return tweakDoneMsg{err: err}
		}
		return tweakDoneMsg{item: updated, res: res}
	}
}

func (m *Model) setPreview(title, body string) {
	md := "# " + title + "\n\n" + body
	rendered := md
	if m.renderer != nil {
		if out, err := m.renderer.Render(md); err == nil {
			rendered = out
		}
	}
	m.preview.SetContent(rendered)
	m.preview.GotoTop()
}

func (m Model) previewTitle() string {
	if m.result != nil && m.result.State == generator.StateRejected {
		return m.result.Title
	}
	return m.current.Title
}

func (m Model) previewBody() string {
	if m.result != nil && m.result.State == generator.StateRejected {
		return m.result.Body
	}
	return m.current.Body
}

func (m Model) View() string {
	var b strings.Builder

	switch m.screen {
	case screenMenu:
		b.WriteString(TitleStyle.Render(Banner))
		b.WriteString("\n")
		b.WriteString(m.menu.View())
		b.WriteString("\n" + HelpStyle.Render("enter select · q quit"))

	case screenTopic:
		b.WriteString(LabelStyle.Render("New post") + "\n\n")
		b.WriteString(InputBorderStyle.Render(m.topic.View()))
		b.WriteString("\n\n" + HelpStyle.Render("enter generate · esc back"))

	case screenTweak:
		b.WriteString(LabelStyle.Render("Tweak: "+m.current.Title) + "\n\n")
		b.WriteString(InputBorderStyle.Render(m.edit.View()))
		b.WriteString("\n\n" + HelpStyle.Render("enter apply · esc back"))

	case screenGenerating:
		b.WriteString(fmt.Sprintf("\n  %s %s\n", m.spin.View(), m.status))
		b.WriteString("\n" + HelpStyle.Render("drafting, reviewing, retrying as needed..."))

	case screenPost:
		b.WriteString(m.postHeader())
		b.WriteString("\n")
		b.WriteString(m.preview.View())
		b.WriteString("\n" + HelpStyle.Render("a approve · t tweak · esc back"))

	case screenDrafts:
		b.WriteString(m.drafts.View())
		b.WriteString("\n" + HelpStyle.Render("enter preview · esc back"))

	case screenRules:
		b.WriteString(m.rulesView())
		b.WriteString("\n" + HelpStyle.Render("esc back"))

	case screenStats:
		b.WriteString(m.statsView())
		b.WriteString("\n" + HelpStyle.Render("esc back"))
	}

	return b.String()
}

func (m Model) postHeader() string {
	if m.err != nil {
		return ErrorStyle.Render("generation failed: " + m.err.Error())
	}
	if m.result == nil {
		header := fmt.Sprintf("%s · %s", m.current.Status, m.current.ID)
		if m.status != "" {
			header += " · " + m.status
		}
		return StatusBarStyle.Render(header)
	}
	switch m.result.State {
	case generator.StateRejected:
		return ErrorStyle.Render(fmt.Sprintf("rejected after %d attempts: %s",
			m.result.Attempts, strings.Join(m.result.Issues, "; ")))
	case generator.StateWithWarnings:
		return WarningStyle.Render(fmt.Sprintf("accepted with warnings (%d attempts): %s",
			m.result.Attempts, strings.Join(m.result.Warnings, "; ")))
	default:
		return StatusBarStyle.Render(fmt.Sprintf("accepted · %d attempts · %d words",
			m.result.Attempts, m.result.Item.WordCount))
	}
}

func (m Model) rulesView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Active rules") + "\n\n")
	all := m.deps.Store.AllActiveRules()
	if len(all) == 0 {
		b.WriteString(DimStyle.Render("No rules yet. Feedback and rule_add build them over time.") + "\n")
		return b.String()
	}
	for _, t := range []store.RuleType{
		store.RuleBannedWord, store.RuleRequiredElement, store.RuleStyleNote,
		store.RuleFormatting, store.RuleCustom, store.RuleSEOKeyword,
	} {
		rules := all[t]
		if len(rules) == 0 {
			continue
		}
		b.WriteString(LabelStyle.Render(string(t)) + "\n")
		for _, r := range rules {
			line := "  " + r.Value
			if r.Reason != "" {
				line += DimStyle.Render("  — " + r.Reason)
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func (m Model) statsView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Stats") + "\n\n")

	st := m.deps.Store.StoreStats()
	b.WriteString(fmt.Sprintf("%s %d\n", LabelStyle.Render("Posts:"), st.TotalItems))
	for status, n := range st.ItemsByStatus {
		b.WriteString(fmt.Sprintf("  %s: %d\n", status, n))
	}
	b.WriteString(fmt.Sprintf("%s %d\n", LabelStyle.Render("Learning events:"), st.LearningEvents))

	if usage, err := m.deps.Limiter.Stats(); err == nil {
		b.WriteString(fmt.Sprintf("%s %d used, %d remaining (resets %s)\n",
			LabelStyle.Render("Usage:"),
			usage.Current.Used, usage.Current.Remaining,
			usage.Current.ResetAt.Format("15:04")))
	}

	b.WriteString(fmt.Sprintf("%s %s (%s)\n", LabelStyle.Render("Provider:"), m.deps.Provider, m.deps.Model))
	return b.String()
}

// Run starts the interactive app.
func Run(deps Deps) error {
	p := tea.NewProgram(NewModel(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
