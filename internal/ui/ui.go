package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mixtape-cli/mixtape/internal/pipeline"
	"github.com/mixtape-cli/mixtape/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PreviewView ViewState = iota
	ConfirmView
	BuildView
	ResultView
)

type previewReadyMsg struct {
	result *pipeline.BuildResult
	err    error
}

type progressUpdateMsg pipeline.ProgressUpdate

type buildCompleteMsg struct {
	result *pipeline.BuildResult
	err    error
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *pipeline.Engine
	req          pipeline.BuildRequest
	width        int
	height       int
	trackList    list.Model
	listReady    bool
	preview      *pipeline.BuildResult
	progressChan chan pipeline.ProgressUpdate
	progress     pipeline.ProgressUpdate
	result       *pipeline.BuildResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model for the given build request.
func NewModel(ctx context.Context, engine *pipeline.Engine, req pipeline.BuildRequest) *Model {
	return &Model{
		ctx:    ctx,
		view:   PreviewView,
		engine: engine,
		req:    req,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init starts a dry-run build so the preview has tracks to show.
func (m *Model) Init() tea.Cmd {
	return m.runPreview()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PreviewView:
			return m.handlePreviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case previewReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.preview = msg.result
		items := make([]list.Item, len(msg.result.Tracks))
		for i, track := range msg.result.Tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Preview of '%s'", msg.result.Name)
		m.trackList.SetSize(m.width-4, m.height-8)
		m.listReady = true
		return m, nil

	case progressUpdateMsg:
		m.progress = pipeline.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case buildCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	if m.view == PreviewView && m.listReady {
		var cmd tea.Cmd
		m.trackList, cmd = m.trackList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PreviewView:
		return m.renderPreview()
	case ConfirmView:
		return m.renderConfirm()
	case BuildView:
		return m.renderBuild()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if m.preview != nil {
			m.view = ConfirmView
			return m, nil
		}
	}

	if m.listReady {
		var cmd tea.Cmd
		m.trackList, cmd = m.trackList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = PreviewView
		return m, nil
	case "y":
		m.view = BuildView
		return m, m.startBuild()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PreviewView
		m.result = nil
		m.err = nil
		return m, m.runPreview()
	}
	return m, nil
}

// runPreview executes a dry-run build off the UI goroutine.
func (m *Model) runPreview() tea.Cmd {
	return func() tea.Msg {
		req := m.req
		req.DryRun = true
		result, err := m.engine.Build(m.ctx, req, nil)
		return previewReadyMsg{result: result, err: err}
	}
}

// startBuild runs the real build with a progress channel feeding the UI.
func (m *Model) startBuild() tea.Cmd {
	m.progressChan = make(chan pipeline.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		result, err := m.engine.Build(m.ctx, m.req, progress)
		m.result = result
		m.err = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return buildCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return buildCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPreview() string {
	if !m.listReady {
		return styles.help.Render("Assembling preview...")
	}

	buildKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "build"))
	helpKeys := []key.Binding{buildKey, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Create playlist '%s'?", m.preview.Name))
	info := fmt.Sprintf(
		"\nTracks: %d\nDuration: %s\nVisibility: %s\n",
		len(m.preview.Tracks),
		shared.FormatDuration(m.preview.TotalDurationMS()),
		shared.VisibilityString(m.req.Public),
	)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderBuild() string {
	title := styles.title.Render("Building Playlist")

	var phase string
	switch m.progress.Phase {
	case pipeline.ResolveConstraints:
		phase = "Resolving vocabulary..."
	case pipeline.AcquireCandidates:
		phase = fmt.Sprintf("Gathering candidates (%d/%d)", m.progress.Step, m.progress.Total)
	case pipeline.VerifyMetadata:
		phase = "Verifying metadata..."
	case pipeline.AssemblePlaylist:
		phase = "Assembling tracks..."
	case pipeline.CreatePlaylist:
		phase = "Creating playlist..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Build failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Playlist Created!")
	info := fmt.Sprintf(
		"\nName: %s\nTracks: %d\nDuration: %s\nURL: %s",
		m.result.Name,
		len(m.result.Tracks),
		shared.FormatDuration(m.result.TotalDurationMS()),
		m.result.URL,
	)

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
