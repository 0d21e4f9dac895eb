package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lyrx/internal/pipeline"
	"github.com/desertthunder/lyrx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	MatchListView
	ConfirmView
	CreateView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       tasks.SearchEngine
	query        string
	opts         tasks.BuildOptions
	width        int
	height       int
	matchList    list.Model
	searchResult pipeline.Result
	searchErr    error
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	creating     bool
	buildResult  *tasks.BuildResult
	buildErr     error
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model for the given query and build options.
func NewModel(ctx context.Context, engine tasks.SearchEngine, query string, opts tasks.BuildOptions) *Model {
	return &Model{
		ctx:    ctx,
		view:   SearchView,
		engine: engine,
		query:  query,
		opts:   opts,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init kicks off the candidate search.
func (m *Model) Init() tea.Cmd {
	return m.startSearch()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.matchList.Width() == 0 {
			m.matchList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MatchListView:
			return m.handleMatchListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case SearchView, CreateView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case searchCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.searchResult = msg.result
		items := make([]list.Item, len(msg.result.Matched))
		for i, track := range msg.result.Matched {
			items[i] = matchItem{track: track}
		}
		m.matchList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.matchList.Title = fmt.Sprintf("Matches for %q", m.query)
		m.matchList.SetSize(m.width-4, m.height-8)
		m.view = MatchListView
		return m, nil

	case createCompleteMsg:
		m.buildResult = msg.result
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SearchView:
		return m.renderSearch()
	case MatchListView:
		return m.renderMatchList()
	case ConfirmView:
		return m.renderConfirm()
	case CreateView:
		return m.renderCreate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleMatchListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if len(m.searchResult.Matched) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.matchList, cmd = m.matchList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = MatchListView
		return m, nil
	case "y":
		m.view = CreateView
		return m, m.startCreate()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = MatchListView
		m.buildResult = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == MatchListView {
		m.matchList, cmd = m.matchList.Update(msg)
	}
	return m, cmd
}

func (m *Model) startSearch() tea.Cmd {
	m.creating = false
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.Search(m.ctx, m.query, m.opts.Backend, m.progressChan)
		m.searchResult = result
		m.searchErr = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) startCreate() tea.Cmd {
	m.creating = true
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	opts := m.opts
	opts.Create = true

	go func() {
		result, err := m.engine.Build(m.ctx, m.query, opts, m.progressChan)
		m.buildResult = result
		m.buildErr = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return m.completionMsg()
		}

		update, ok := <-m.progressChan
		if !ok {
			m.progressChan = nil
			return m.completionMsg()
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) completionMsg() tea.Msg {
	if m.creating {
		return createCompleteMsg{result: m.buildResult, err: m.buildErr}
	}
	return searchCompleteMsg{result: m.searchResult, err: m.searchErr}
}

func (m *Model) renderPhase() string {
	switch m.progress.Phase {
	case tasks.FetchCandidates:
		return "Fetching candidates..."
	case tasks.ProcessCandidates:
		return "Filtering and scoring candidates..."
	case tasks.MatchCandidates:
		if m.progress.Total > 0 {
			return fmt.Sprintf("Matching against catalog (%d/%d)", m.progress.Step, m.progress.Total)
		}
		return "Matching against catalog..."
	case tasks.ReplacePlaylists:
		return "Removing existing playlists..."
	case tasks.CreatePlaylist:
		return "Creating playlist..."
	default:
		return "Processing..."
	}
}

func (m *Model) renderSearch() string {
	title := styles.title.Render(fmt.Sprintf("Searching for %q", m.query))
	return fmt.Sprintf("%s\n\n%s\n%s", title, m.renderPhase(), m.progress.Message)
}

func (m *Model) renderMatchList() string {
	createKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "create playlist"),
	)
	helpKeys := []key.Binding{createKey, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if len(m.searchResult.Matched) == 0 {
		note := styles.warn.Render(fmt.Sprintf("No catalog matches for %q", m.query))
		return fmt.Sprintf("%s\n\n%s", note, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	}

	return fmt.Sprintf("%s\n\n%s", m.matchList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	name := m.opts.PlaylistName
	if name == "" {
		name = m.query
	}

	title := styles.title.Render(fmt.Sprintf("Create playlist '%s'?", name))
	info := fmt.Sprintf("\nTracks: %d\n", len(m.searchResult.Matched))
	if m.opts.Replace {
		info += styles.warn.Render("Existing playlists with this name will be removed.") + "\n"
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderCreate() string {
	title := styles.title.Render("Creating Playlist")
	return fmt.Sprintf("%s\n\n%s\n%s", title, m.renderPhase(), m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Playlist creation failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.buildResult == nil || m.buildResult.Playlist == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}

	playlist := m.buildResult.Playlist
	summary := m.buildResult.Summary

	title := styles.ok.Render("✓ Playlist Created!")
	info := fmt.Sprintf(
		"\nName: %s\nTracks: %d\nMatch rate: %d/%d (%.1f%%)",
		playlist.Name,
		playlist.TrackCount,
		summary.MatchedCount,
		summary.DedupedCount,
		summary.MatchRate()*100,
	)
	if playlist.URL != "" {
		info += fmt.Sprintf("\nURL: %s", playlist.URL)
	}

	var replaced string
	if n := len(m.buildResult.Replaced); n > 0 {
		replaced = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Removed %d existing playlist(s)", n)))
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, replaced, helpView)
}
