// Package tui is the terminal surface: a bubbletea program over a
// workspace. Fetches run as tea.Cmds off the update loop and report back
// through loadedMsg and processedMsg.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/hayeah/repocat/internal/render"
	"github.com/hayeah/repocat/internal/workspace"
)

type mode int

const (
	modeBrowse mode = iota
	modeURL
	modeSearch
)

type focus int

const (
	focusTree focus = iota
	focusExtensions
)

type loadedMsg struct{ res workspace.LoadResult }

type processedMsg struct{ res workspace.ProcessResult }

var (
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

// Model is the bubbletea model.
type Model struct {
	ws  *workspace.Workspace
	ctx context.Context

	mode   mode
	focus  focus
	url    textinput.Model
	search textinput.Model

	rows      []render.Row
	cursor    int
	extCursor int

	showOutput bool
	viewport   viewport.Model
	ready      bool
	quitting   bool
}

// New creates a model over ws. A non-empty input is loaded on start.
func New(ctx context.Context, ws *workspace.Workspace, input string) Model {
	url := textinput.New()
	url.Placeholder = "https://github.com/owner/repo"
	url.Prompt = "repo> "
	url.CharLimit = 0
	url.SetValue(input)

	search := textinput.New()
	search.Placeholder = "Type to fuzzy-search..."
	search.Prompt = "/"
	search.CharLimit = 0

	m := Model{
		ws:       ws,
		ctx:      ctx,
		url:      url,
		search:   search,
		viewport: viewport.New(0, 0),
	}
	if input == "" {
		m.mode = modeURL
		m.url.Focus()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if v := strings.TrimSpace(m.url.Value()); v != "" && m.mode == modeBrowse {
		return m.load(v)
	}
	return nil
}

func (m Model) load(input string) tea.Cmd {
	t, err := m.ws.BeginLoad(input)
	if err != nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg { return loadedMsg{res: t.Run(ctx)} }
}

func (m Model) process() tea.Cmd {
	t, err := m.ws.BeginProcess()
	if err != nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg { return processedMsg{res: t.Run(ctx)} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.ready = true
		m.refresh()
		return m, nil

	case loadedMsg:
		_ = m.ws.ApplyLoad(msg.res)
		m.cursor, m.extCursor = 0, 0
		m.showOutput = false
		m.refresh()
		return m, nil

	case processedMsg:
		if err := m.ws.ApplyProcess(msg.res); err == nil {
			m.showOutput = true
			m.viewport.GotoTop()
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeURL:
			return m.updateURL(msg)
		case modeSearch:
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateURL(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeBrowse
		m.url.Blur()
		cmd := m.load(m.url.Value())
		m.refresh()
		return m, cmd
	case "esc":
		m.mode = modeBrowse
		m.url.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.url, cmd = m.url.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		fallthrough
	case "enter":
		m.mode = modeBrowse
		m.search.Blur()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	m.refresh()
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.ws.Snapshot()

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "u":
		m.mode = modeURL
		m.url.Focus()
		return m, textinput.Blink
	case "/":
		m.mode = modeSearch
		m.search.Focus()
		return m, textinput.Blink
	case "tab":
		if m.focus == focusTree && len(snap.Extensions) > 0 {
			m.focus = focusExtensions
		} else {
			m.focus = focusTree
		}
	case "v":
		m.showOutput = !m.showOutput && snap.Result != nil
		m.viewport.GotoTop()
	case "p":
		cmd := m.process()
		m.refresh()
		return m, cmd
	case "c":
		_ = m.ws.Copy()
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "left", "h":
		if m.focus == focusExtensions {
			m.extCursor = max(m.extCursor-1, 0)
		} else if r, ok := m.current(); ok && r.Node.IsDir() && r.Expanded {
			m.ws.ToggleExpanded(r.Node.Path)
		}
	case "right", "l":
		if m.focus == focusExtensions {
			m.extCursor = min(m.extCursor+1, len(snap.Extensions)-1)
		} else if r, ok := m.current(); ok && r.Node.IsDir() && !r.Expanded {
			m.ws.ToggleExpanded(r.Node.Path)
		}
	case "enter":
		if r, ok := m.current(); ok && r.Node.IsDir() && m.focus == focusTree {
			m.ws.ToggleExpanded(r.Node.Path)
		}
	case " ", "x":
		if m.focus == focusExtensions {
			if m.extCursor < len(snap.Extensions) {
				ext := snap.Extensions[m.extCursor]
				_ = m.ws.CheckExtension(ext, !snap.State.FilterHas(ext))
			}
		} else if r, ok := m.current(); ok && r.Selectable {
			_ = m.ws.ToggleFile(r.Node.Path, !r.Checked)
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.refresh()
	return m, nil
}

func (m *Model) move(delta int) {
	if m.showOutput {
		if delta < 0 {
			m.viewport.LineUp(1)
		} else {
			m.viewport.LineDown(1)
		}
		return
	}
	if m.focus == focusExtensions {
		return
	}
	m.cursor = max(0, min(m.cursor+delta, len(m.rows)-1))
}

func (m Model) current() (render.Row, bool) {
	if m.showOutput || m.cursor < 0 || m.cursor >= len(m.rows) {
		return render.Row{}, false
	}
	return m.rows[m.cursor], true
}

// refresh recomputes the visible rows and the viewport content.
func (m *Model) refresh() {
	snap := m.ws.Snapshot()
	m.rows = filterRows(snap.Rows(), m.search.Value())
	m.cursor = max(0, min(m.cursor, len(m.rows)-1))
	m.extCursor = max(0, min(m.extCursor, len(snap.Extensions)-1))

	if m.showOutput {
		m.viewport.SetContent(snap.Output())
		return
	}
	m.viewport.SetContent(m.treeView(snap))
	m.ensureCursorVisible()
}

// filterRows keeps the rows whose path fuzzy-matches term, in tree order.
func filterRows(rows []render.Row, term string) []render.Row {
	if term == "" {
		return rows
	}
	paths := make([]string, len(rows))
	for i, r := range rows {
		paths[i] = r.Node.Path
	}
	keep := make(map[int]bool)
	for _, match := range fuzzy.Find(term, paths) {
		keep[match.Index] = true
	}
	var out []render.Row
	for i, r := range rows {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

func (m *Model) ensureCursorVisible() {
	if m.viewport.Height <= 0 {
		return
	}
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1
	switch {
	case m.cursor < top:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor > bottom:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m Model) treeView(snap workspace.Snapshot) string {
	var sb strings.Builder
	for i, r := range m.rows {
		line := rowLine(snap, r, m.search.Value() != "")
		if i == m.cursor && m.focus == focusTree {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func rowLine(snap workspace.Snapshot, r render.Row, flat bool) string {
	indent := strings.Repeat("  ", r.Depth)
	name := r.Node.Name
	if flat {
		indent, name = "", r.Node.Path
	}

	switch {
	case r.Node.Path == "":
		arrow := "▸"
		if r.Expanded {
			arrow = "▾"
		}
		return fmt.Sprintf("%s %s", arrow, snap.Repo)
	case r.Node.IsDir():
		arrow := "▸"
		if r.Expanded {
			arrow = "▾"
		}
		return fmt.Sprintf("%s%s %s/", indent, arrow, name)
	case !r.Selectable:
		return dimStyle.Render(fmt.Sprintf("%s    %s", indent, name))
	case r.Checked:
		return fmt.Sprintf("%s[x] %s", indent, name)
	default:
		return fmt.Sprintf("%s[ ] %s", indent, name)
	}
}

const (
	headerHeight = 3
	footerHeight = 3
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.ws.Snapshot()

	var header string
	switch m.mode {
	case modeURL:
		header = m.url.View()
	case modeSearch:
		header = m.search.View()
	default:
		title := "repocat"
		if !snap.Repo.IsZero() {
			title += " · " + snap.Repo.String()
		}
		header = titleStyle.Render(title)
	}
	header += "\n" + m.extensionBar(snap) + "\n"

	body := "Initializing..."
	if m.ready {
		body = m.viewport.View()
	}

	return header + "\n" + body + "\n" + m.statusLine(snap) + "\n" + dimStyle.Render(m.help())
}

func (m Model) extensionBar(snap workspace.Snapshot) string {
	if len(snap.Extensions) == 0 {
		return dimStyle.Render("no extensions")
	}
	parts := make([]string, len(snap.Extensions))
	for i, ext := range snap.Extensions {
		box := "[ ]"
		if snap.State.FilterHas(ext) {
			box = "[x]"
		}
		part := box + " " + ext
		if m.focus == focusExtensions && i == m.extCursor {
			part = cursorStyle.Render(part)
		}
		parts[i] = part
	}
	return strings.Join(parts, "  ")
}

func (m Model) statusLine(snap workspace.Snapshot) string {
	switch {
	case snap.Loading:
		return "Loading " + snap.Repo.String() + "..."
	case snap.Processing:
		return fmt.Sprintf("Fetching %d files...", snap.State.Selected.Len())
	case snap.Err != nil:
		return errStyle.Render(snap.Message())
	case snap.Notice != "":
		return noticeStyle.Render(snap.Notice)
	}

	status := fmt.Sprintf("%d selected", snap.State.Selected.Len())
	if snap.Result != nil {
		status += fmt.Sprintf(" · output %d files, %d tokens", len(snap.Result.Files), snap.Result.Tokens)
	}
	return status
}

func (m Model) help() string {
	switch m.mode {
	case modeURL:
		return "(Enter to load, Esc to cancel)"
	case modeSearch:
		return "(type to filter, Enter to keep, Esc to clear)"
	}
	if m.showOutput {
		return "(↑/↓ scroll, v back to tree, c copy, q quit)"
	}
	return "(↑/↓ move, Space toggle, ←/→ fold, Tab extensions, / search, u url, p process, v output, c copy, q quit)"
}
