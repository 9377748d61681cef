package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"webdeck/internal/models"
	"webdeck/internal/pipeline"
	"webdeck/internal/repositories"
	"webdeck/internal/server"
	"webdeck/internal/services"
	"webdeck/internal/shared"
)

// Tab identifies the active dashboard tab.
type Tab int

const (
	LoggerTab Tab = iota
	ProjectsTab
)

const transcriptLines = 8

// Deps bundles the dependencies the dashboard needs.
type Deps struct {
	Source      services.ProjectSource
	Engine      *pipeline.Engine
	Notes       *repositories.NoteRepository
	Listings    *repositories.ListingRepository
	SessionID   string
	PreviewAddr string
	Logger      *log.Logger
}

// Model represents the dashboard application state.
type Model struct {
	ctx    context.Context
	tab    Tab
	width  int
	height int
	logger *log.Logger

	sessionID string
	notes     *repositories.NoteRepository
	input     textarea.Model
	history   []*models.Note
	flash     string

	source      services.ProjectSource
	listings    *repositories.ListingRepository
	engine      *pipeline.Engine
	previewAddr string
	projects    []models.Project
	projectList list.Model
	listReady   bool
	banner      string
	snapshots   chan models.Project
	inFlight    map[string]bool

	help help.Model
	keys keyMap
	err  error
}

// projectItem wraps [models.Project] to implement list.Item.
type projectItem struct {
	project models.Project
}

func (i projectItem) FilterValue() string { return i.project.ID }
func (i projectItem) Title() string {
	return fmt.Sprintf("%s  %s", i.project.ID, statusBadge(i.project.Status))
}
func (i projectItem) Description() string {
	return fmt.Sprintf("%d files", len(i.project.Files))
}

type listingLoadedMsg struct {
	projects []models.Project
	banner   string
	err      error
}

type historyLoadedMsg struct {
	notes []*models.Note
	err   error
}

type noteSavedMsg struct {
	err error
}

type snapshotMsg models.Project

// NewModel creates a new dashboard model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	input := textarea.New()
	input.Placeholder = "Write a note for this session..."
	input.Focus()

	logger := deps.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Model{
		ctx:         ctx,
		tab:         LoggerTab,
		logger:      logger,
		sessionID:   deps.SessionID,
		notes:       deps.Notes,
		input:       input,
		source:      deps.Source,
		listings:    deps.Listings,
		engine:      deps.Engine,
		previewAddr: deps.PreviewAddr,
		snapshots:   make(chan models.Project, 64),
		inFlight:    make(map[string]bool),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init fetches the project listing and recent note history, then starts
// listening for pipeline snapshots.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchListing(), m.fetchHistory(), m.waitForSnapshot())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 4)
		if m.listReady {
			m.projectList.SetSize(msg.Width-4, msg.Height-transcriptLines-6)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.tab {
		case LoggerTab:
			return m.handleLoggerKeys(msg)
		case ProjectsTab:
			return m.handleProjectKeys(msg)
		}

	case listingLoadedMsg:
		if msg.err != nil {
			m.banner = fmt.Sprintf("listing unavailable: %v", msg.err)
			return m, nil
		}
		m.banner = msg.banner
		m.projects = msg.projects
		m.projectList = list.New(m.items(), list.NewDefaultDelegate(), 0, 0)
		m.projectList.Title = m.source.Name()
		m.projectList.SetSize(m.width-4, m.height-transcriptLines-6)
		m.listReady = true
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.flash = fmt.Sprintf("history unavailable: %v", msg.err)
			return m, nil
		}
		m.history = msg.notes
		return m, nil

	case noteSavedMsg:
		if msg.err != nil {
			m.flash = fmt.Sprintf("save failed: %v", msg.err)
			return m, nil
		}
		m.flash = "note saved"
		return m, m.fetchHistory()

	case snapshotMsg:
		m.applySnapshot(models.Project(msg))
		return m, m.waitForSnapshot()
	}

	return m.updateActive(msg)
}

// View renders the active tab under a shared tab bar.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	var body string
	switch m.tab {
	case LoggerTab:
		body = m.renderLogger()
	case ProjectsTab:
		body = m.renderProjects()
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", m.renderTabs(), body, m.help.View(m.keys))
}

func (m *Model) handleLoggerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.save):
			return m, m.saveNote()
		case key.Matches(msg, m.keys.back):
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.nextTab), key.Matches(msg, m.keys.prevTab):
		m.tab = ProjectsTab
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.input.Focus()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleProjectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.nextTab), key.Matches(msg, m.keys.prevTab):
		m.tab = LoggerTab
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchListing()
	case key.Matches(msg, m.keys.enter):
		if p, ok := m.selectedProject(); ok {
			return m, m.startRun(p)
		}
		return m, nil
	case key.Matches(msg, m.keys.open):
		if p, ok := m.selectedProject(); ok && p.Preview != "" {
			url := server.PreviewURL(m.previewAddr, p.Preview)
			if err := shared.OpenBrowser(url); err != nil {
				m.banner = fmt.Sprintf("could not open browser: %v", err)
			}
		}
		return m, nil
	}

	return m.updateActive(msg)
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.tab {
	case LoggerTab:
		m.input, cmd = m.input.Update(msg)
	case ProjectsTab:
		if m.listReady {
			m.projectList, cmd = m.projectList.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) selectedProject() (models.Project, bool) {
	if !m.listReady {
		return models.Project{}, false
	}
	selected := m.projectList.SelectedItem()
	if selected == nil {
		return models.Project{}, false
	}
	item, ok := selected.(projectItem)
	return item.project, ok
}

// applySnapshot replaces the stored project record wholesale so the view
// never mixes fields from two pipeline states.
func (m *Model) applySnapshot(p models.Project) {
	for i := range m.projects {
		if m.projects[i].ID == p.ID {
			m.projects[i] = p
			break
		}
	}
	if p.Status.Terminal() {
		delete(m.inFlight, p.ID)
	}
	if m.listReady {
		m.projectList.SetItems(m.items())
	}
}

func (m *Model) items() []list.Item {
	items := make([]list.Item, len(m.projects))
	for i, p := range m.projects {
		items[i] = projectItem{project: p}
	}
	return items
}

func (m *Model) fetchListing() tea.Cmd {
	return func() tea.Msg {
		listings, err := m.source.List(m.ctx)
		if err == nil {
			if m.listings != nil {
				if cacheErr := m.listings.Replace(listings); cacheErr != nil {
					m.logger.Warn("could not cache project listing", "error", cacheErr)
				}
			}
			return listingLoadedMsg{projects: projectsFrom(listings)}
		}

		if m.listings != nil {
			cached, fetchedAt, cacheErr := m.listings.Load()
			if cacheErr == nil && len(cached) > 0 {
				banner := fmt.Sprintf("source unreachable, showing listing from %s", fetchedAt.Format(time.RFC822))
				return listingLoadedMsg{projects: projectsFrom(cached), banner: banner}
			}
		}
		return listingLoadedMsg{err: err}
	}
}

func (m *Model) fetchHistory() tea.Cmd {
	return func() tea.Msg {
		notes, err := m.notes.Recent(10)
		return historyLoadedMsg{notes: notes, err: err}
	}
}

func (m *Model) saveNote() tea.Cmd {
	body := m.input.Value()
	return func() tea.Msg {
		note := models.NewNote(0, m.sessionID, body)
		return noteSavedMsg{err: m.notes.UpsertBySession(note)}
	}
}

// startRun launches the pipeline for the selected project. Re-running a
// project that is already mid-pipeline is rejected here so a stray keypress
// cannot double-download an archive.
func (m *Model) startRun(p models.Project) tea.Cmd {
	if m.inFlight[p.ID] || !p.Status.Terminal() && p.Status != models.StatusAvailable {
		m.banner = fmt.Sprintf("%s is already running through the pipeline", p.ID)
		return nil
	}

	m.inFlight[p.ID] = true
	m.banner = ""

	go func() {
		final, err := m.engine.Run(m.ctx, p, m.snapshots)
		if err != nil {
			m.logger.Error("pipeline run failed", "project", p.ID, "error", err)
		}
		m.snapshots <- final
	}()

	return nil
}

// waitForSnapshot bridges the pipeline's update channel into the Elm loop.
// The channel is shared by every run, so one listener is always enough.
func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-m.snapshots)
	}
}

func (m *Model) renderTabs() string {
	logger := styles.tabIdle.Render("Logger")
	projects := styles.tabIdle.Render("Projects")
	switch m.tab {
	case LoggerTab:
		logger = styles.tabActive.Render("Logger")
	case ProjectsTab:
		projects = styles.tabActive.Render("Projects")
	}
	return fmt.Sprintf("%s %s", logger, projects)
}

func (m *Model) renderLogger() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Session Log"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.flash != "" {
		b.WriteString(styles.warn.Render(m.flash))
		b.WriteString("\n\n")
	}

	if len(m.history) > 0 {
		b.WriteString(styles.help.Render("Recent notes"))
		b.WriteString("\n")
		for _, note := range m.history {
			line := fmt.Sprintf("%s  %s", note.CreatedAt().Format("Jan 02 15:04"), firstLine(note.Body()))
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m *Model) renderProjects() string {
	var b strings.Builder

	if m.banner != "" {
		b.WriteString(styles.banner.Render(m.banner))
		b.WriteString("\n\n")
	}

	if !m.listReady {
		b.WriteString("Loading projects...")
		return b.String()
	}

	b.WriteString(m.projectList.View())
	b.WriteString("\n")
	b.WriteString(m.renderTranscript())
	return b.String()
}

// renderTranscript shows the tail of the selected project's pipeline log.
func (m *Model) renderTranscript() string {
	p, ok := m.selectedProject()
	if !ok {
		return ""
	}
	for i := range m.projects {
		if m.projects[i].ID == p.ID {
			p = m.projects[i]
			break
		}
	}

	var b strings.Builder
	entries := p.Log
	if len(entries) > transcriptLines {
		entries = entries[len(entries)-transcriptLines:]
	}
	for _, entry := range entries {
		switch entry.Kind {
		case models.LogError:
			b.WriteString(styles.err.Render("✗ " + entry.Text))
		default:
			b.WriteString("• " + entry.Text)
		}
		b.WriteString("\n")
	}

	if p.Status == models.StatusRunning && p.Preview != "" {
		b.WriteString(styles.ok.Render(fmt.Sprintf("preview: %s", server.PreviewURL(m.previewAddr, p.Preview))))
		b.WriteString("\n")
	}

	return b.String()
}

func projectsFrom(listings []services.ProjectListing) []models.Project {
	projects := make([]models.Project, len(listings))
	for i, l := range listings {
		projects[i] = models.Project{
			ID:     l.ID,
			Files:  l.Files,
			Status: models.StatusAvailable,
		}
	}
	return projects
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
