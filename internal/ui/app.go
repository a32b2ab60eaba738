package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/pricewatch/internal/config"
	"github.com/five82/pricewatch/internal/logtail"
	"github.com/five82/pricewatch/internal/prefs"
	"github.com/five82/pricewatch/internal/search"
	"github.com/five82/pricewatch/internal/session"
)

// View represents the current active view.
type View int

const (
	ViewResults View = iota
	ViewActivity
)

// Pane focus within the results view.
const (
	paneList = iota
	paneDetail
)

// Options configures the UI.
type Options struct {
	Context      context.Context
	Search       *search.Container
	Session      *session.Session
	Config       config.Config
	Prefs        prefs.Prefs
	PrefsPath    string
	InitialQuery string
	Logger       zerolog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Wiring
	ctx       context.Context
	search    *search.Container
	session   *session.Session
	cfg       config.Config
	prefs     prefs.Prefs
	prefsPath string
	log       zerolog.Logger
	keys      keyMap
	now       func() time.Time
	uiTick    time.Duration

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	focusedPane int
	showHelp    bool

	// Search state, as last read from the container
	snapshot    search.State
	selectedRow int
	pendingInit string

	// Components
	input          textinput.Model
	spinner        spinner.Model
	detailViewport viewport.Model

	// Activity state
	activity         []logtail.Event
	activityErr      error
	activityViewport viewport.Model
	activityLoaded   time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := strings.TrimSpace(opts.Prefs.Theme)
	if themeName == "" {
		themeName = defaultThemeName
	}
	theme := GetTheme(themeName)

	ti := textinput.New()
	ti.Placeholder = "Search products..."
	ti.Prompt = "/ "
	ti.CharLimit = 200
	if q := strings.TrimSpace(opts.InitialQuery); q != "" {
		ti.SetValue(q)
	} else {
		ti.SetValue(opts.Prefs.LastQuery)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))

	m := Model{
		ctx:         ctx,
		search:      opts.Search,
		session:     opts.Session,
		cfg:         opts.Config,
		prefs:       opts.Prefs,
		prefsPath:   opts.PrefsPath,
		log:         opts.Logger,
		keys:        DefaultKeyMap(),
		now:         time.Now,
		uiTick:      DefaultUIInterval,
		theme:       theme,
		currentView: ViewResults,
		pendingInit: strings.TrimSpace(opts.InitialQuery),
		input:       ti,
		spinner:     sp,

		detailViewport:   viewport.New(0, 0),
		activityViewport: viewport.New(0, 0),
	}
	if m.cfg.PriceSymbol == "" {
		m.cfg.PriceSymbol = "$"
	}
	if m.search != nil {
		m.snapshot = m.search.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.uiTick),
		m.spinner.Tick,
	}
	if m.pendingInit != "" {
		query := m.pendingInit
		cmds = append(cmds, func() tea.Msg { return submitMsg(query) })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.input.Width = max(m.width-8, 10)
		m.updateDetailViewport()
		m.updateActivityViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(search.State(msg))
		return m, nil

	case submitMsg:
		return m.submitSearch(string(msg))

	case requestDoneMsg:
		m.logOutcome(msg)
		return m, fetchSnapshotCmd(m.search)

	case activityMsg:
		m.activity = msg.events
		m.activityErr = msg.err
		m.activityLoaded = m.now()
		m.updateActivityViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.input.Focused() {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.updateDetailViewport()
		m.updateActivityViewport()
		return m, nil

	case key.Matches(msg, m.keys.FocusSearch):
		m.currentView = ViewResults
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.FetchProducts):
		return m.fetchProducts()

	case key.Matches(msg, m.keys.ClearResults):
		if m.search != nil {
			m.search.ClearResults()
			m.applySnapshot(m.search.Snapshot())
		}
		return m, nil

	case key.Matches(msg, m.keys.ViewActivity):
		m.currentView = ViewActivity
		return m, loadActivityCmd(m.cfg.LogFile)

	case key.Matches(msg, m.keys.ViewResults), key.Matches(msg, m.keys.Escape):
		m.currentView = ViewResults
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		if m.currentView == ViewResults {
			m.focusedPane = (m.focusedPane + 1) % 2
			m.updateDetailViewport()
		}
		return m, nil
	}

	switch m.currentView {
	case ViewActivity:
		return m.handleActivityKey(msg)
	default:
		return m.handleResultsKey(msg)
	}
}

// handleInputKey routes keys to the search box while it has focus.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Escape):
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		m.input.Blur()
		return m.submitSearch(query)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitSearch dispatches the configured search intent for query. Blank
// queries never reach the container.
func (m Model) submitSearch(query string) (tea.Model, tea.Cmd) {
	query = strings.TrimSpace(query)
	if query == "" || m.search == nil {
		return m, nil
	}

	var req *search.Request
	if m.cfg.AutoFetch {
		req = m.search.SearchAndFetch(m.ctx, query)
	} else {
		req = m.search.StartSearch(m.ctx, query)
	}
	m.applySnapshot(m.search.Snapshot())

	m.prefs.LastQuery = query
	m.savePrefs()

	return m, tea.Batch(waitCmd(req), m.spinner.Tick)
}

func (m Model) fetchProducts() (tea.Model, tea.Cmd) {
	if m.search == nil {
		return m, nil
	}
	req := m.search.FetchProducts(m.ctx)
	m.applySnapshot(m.search.Snapshot())
	return m, tea.Batch(waitCmd(req), m.spinner.Tick)
}

// handleTick processes the UI refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{fetchSnapshotCmd(m.search)}

	if m.currentView == ViewActivity && m.now().Sub(m.activityLoaded) >= ActivityRefreshInterval {
		cmds = append(cmds, loadActivityCmd(m.cfg.LogFile))
	}

	cmds = append(cmds, tickCmd(m.uiTick))
	return m, tea.Batch(cmds...)
}

// applySnapshot stores a new state and keeps the selection on the same
// product when it is still present.
func (m *Model) applySnapshot(s search.State) {
	var selectedID int64
	if p := m.selectedProduct(); p != nil {
		selectedID = p.ID
	}

	m.snapshot = s

	count := len(m.snapshot.Products)
	switch {
	case count == 0:
		m.selectedRow = 0
	case selectedID > 0:
		found := false
		for i, p := range m.snapshot.Products {
			if p.ID == selectedID {
				m.selectedRow = i
				found = true
				break
			}
		}
		if !found && m.selectedRow >= count {
			m.selectedRow = count - 1
		}
	case m.selectedRow >= count:
		m.selectedRow = count - 1
	}
	m.updateDetailViewport()
}

func (m Model) logOutcome(msg requestDoneMsg) {
	var failure *search.Failure
	switch {
	case msg.err == nil:
		m.log.Debug().Str("intent", msg.intent.String()).Uint64("seq", msg.seq).Msg("request done")
	case errors.Is(msg.err, search.ErrSuperseded):
		m.log.Debug().Str("intent", msg.intent.String()).Uint64("seq", msg.seq).Msg("request superseded")
	case errors.As(msg.err, &failure):
		m.log.Debug().Str("intent", msg.intent.String()).Uint64("seq", msg.seq).Str("message", failure.Message).Msg("request failed")
	default:
		m.log.Debug().Err(msg.err).Uint64("seq", msg.seq).Msg("request wait ended")
	}
}

func (m Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn().Err(err).Msg("save prefs")
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderSearchBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewActivity:
		return m.renderActivity()
	default:
		return m.renderResults()
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg search.State

type submitMsg string

type requestDoneMsg struct {
	intent search.Intent
	seq    uint64
	err    error
}

type activityMsg struct {
	events []logtail.Event
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(c *search.Container) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(c.Snapshot())
	}
}

// waitCmd blocks until req settles and reports how it ended.
func waitCmd(req *search.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		<-req.Done()
		return requestDoneMsg{intent: req.Intent, seq: req.Seq, err: req.Err()}
	}
}

func loadActivityCmd(path string) tea.Cmd {
	return func() tea.Msg {
		events, err := logtail.Tail(path, ActivityLineLimit)
		return activityMsg{events: events, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
