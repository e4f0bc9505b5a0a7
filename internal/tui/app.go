package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/habmon/habmon/internal/config"
	"github.com/habmon/habmon/internal/models"
	"github.com/habmon/habmon/internal/realtime"
	"github.com/habmon/habmon/internal/tui/views/population"
	resviews "github.com/habmon/habmon/internal/tui/views/resources"
	"github.com/habmon/habmon/internal/util"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// MaxContentWidth is the maximum width for content display
const MaxContentWidth = 120

const (
	defaultRefreshInterval = 5 * time.Second
	maxAlerts              = 10
	// header, separator, alert bar, footer separator, footer
	chromeLines = 6
)

// Module represents a view module in the application.
type Module string

const (
	ModuleDashboard  Module = "dashboard"
	ModuleResources  Module = "resources"
	ModulePopulation Module = "population"
	ModuleHelp       Module = "help"
)

// Service is the resource service the dashboard reads and writes through.
type Service interface {
	ListForDashboard(ctx context.Context) ([]models.ResourceCard, error)
	Stats(ctx context.Context) (models.ResourceStats, error)
	History(ctx context.Context, code string, from, to *time.Time) ([]models.HistoryPoint, error)
	Delete(ctx context.Context, code string) error
	UpdatePopulation(ctx context.Context, requested float64) (*models.PopulationUpdate, error)
}

// App is the main Bubble Tea application model.
type App struct {
	service Service
	config  *config.Config
	clock   util.Clock
	events  <-chan realtime.Event

	resourcesView  *resviews.ListView
	populationForm *population.Form

	// UI state
	theme       *Theme
	keys        KeyMap
	width       int
	height      int
	ready       bool
	quitting    bool
	showConfirm bool

	currentModule  Module
	previousModule Module
	showDetail     bool
	pendingDelete  string

	cards    []models.ResourceCard
	stats    models.ResourceStats
	critical map[string]bool
	alerts   []Alert
}

// Alert represents a system alert.
type Alert struct {
	Level   AlertLevel
	Message string
	Time    time.Time
}

// AlertLevel indicates the severity of an alert.
type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertCritical
)

// Option configures an App.
type Option func(*App)

// WithClock sets the clock shown in the alert bar.
func WithClock(c util.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithEvents makes the dashboard refresh as soon as a realtime event
// arrives instead of waiting for the next refresh tick.
func WithEvents(ch <-chan realtime.Event) Option {
	return func(a *App) { a.events = ch }
}

// New creates a new App instance.
func New(svc Service, cfg *config.Config, opts ...Option) *App {
	a := &App{
		service:       svc,
		config:        cfg,
		clock:         util.SystemClock{},
		theme:         NewTheme(cfg.Display.ColorScheme),
		keys:          DefaultKeyMap(),
		currentModule: ModuleDashboard,
		critical:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.resourcesView = resviews.NewListView(svc)
	a.resourcesView.SetStyles(a.theme.Styles())
	a.resourcesView.SetDateTimeFormat(cfg.Display.DateFormat + " " + cfg.Display.TimeFormat)

	return a
}

type refreshMsg time.Time

type dataLoadedMsg struct {
	cards []models.ResourceCard
	stats models.ResourceStats
	err   error
}

type historyLoadedMsg struct {
	code string
	err  error
}

type resourceDeletedMsg struct {
	code string
	err  error
}

type populationSavedMsg struct {
	update *models.PopulationUpdate
	err    error
}

type realtimeMsg struct {
	event realtime.Event
	ok    bool
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.load(), a.refreshCmd(), a.waitForEvent())
}

func (a *App) refreshCmd() tea.Cmd {
	interval := a.config.Display.RefreshInterval.Duration
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (a *App) waitForEvent() tea.Cmd {
	if a.events == nil {
		return nil
	}
	ch := a.events
	return func() tea.Msg {
		evt, ok := <-ch
		return realtimeMsg{event: evt, ok: ok}
	}
}

// load fetches the cards and overview statistics.
func (a *App) load() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		cards, err := a.service.ListForDashboard(ctx)
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		stats, err := a.service.Stats(ctx)
		return dataLoadedMsg{cards: cards, stats: stats, err: err}
	}
}

func (a *App) loadHistory(code string) tea.Cmd {
	return func() tea.Msg {
		err := a.resourcesView.LoadHistory(context.Background(), code)
		return historyLoadedMsg{code: code, err: err}
	}
}

func (a *App) deleteResource(code string) tea.Cmd {
	return func() tea.Msg {
		err := a.service.Delete(context.Background(), code)
		return resourceDeletedMsg{code: code, err: err}
	}
}

func (a *App) savePopulation(requested float64) tea.Cmd {
	return func() tea.Msg {
		update, err := a.service.UpdatePopulation(context.Background(), requested)
		return populationSavedMsg{update: update, err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.updateViewDimensions()
		return a, nil

	case refreshMsg:
		return a, tea.Batch(a.load(), a.refreshCmd())

	case realtimeMsg:
		if !msg.ok {
			a.events = nil
			return a, nil
		}
		if alert, ok := msg.event.Data.(realtime.CriticalAlert); ok {
			a.critical[alert.Resource.Code] = true
			a.AddAlert(AlertCritical, alert.Message)
		}
		return a, tea.Batch(a.load(), a.waitForEvent())

	case dataLoadedMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Failed to load resources: "+msg.err.Error())
			return a, nil
		}
		a.setCards(msg.cards)
		a.stats = msg.stats
		return a, nil

	case historyLoadedMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Failed to load history for "+msg.code+": "+msg.err.Error())
		}
		return a, nil

	case resourceDeletedMsg:
		a.showDetail = false
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Failed to delete "+msg.code+": "+msg.err.Error())
			return a, nil
		}
		delete(a.critical, msg.code)
		a.AddAlert(AlertInfo, "Resource "+msg.code+" deleted")
		return a, a.load()

	case populationSavedMsg:
		if msg.err != nil {
			if a.populationForm != nil {
				a.populationForm.SetError(msg.err.Error())
			}
			return a, nil
		}
		a.stats.Population = msg.update.Population
		a.setCards(msg.update.Resources)
		a.populationForm = a.newPopulationForm()
		a.AddAlert(AlertInfo, fmt.Sprintf("Population set to %d", msg.update.Population))
		return a, a.load()
	}

	return a, nil
}

// setCards stores fresh cards and raises an alert for every resource that
// has just turned critical.
func (a *App) setCards(cards []models.ResourceCard) {
	a.cards = cards
	a.resourcesView.SetCards(cards)

	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		seen[c.Code] = true
		switch {
		case c.IsCritical && !a.critical[c.Code]:
			a.critical[c.Code] = true
			a.AddAlert(AlertCritical, fmt.Sprintf("%s at %.2f%%", c.Name, c.CurrentPercentage))
		case !c.IsCritical && a.critical[c.Code]:
			delete(a.critical, c.Code)
		}
	}
	for code := range a.critical {
		if !seen[code] {
			delete(a.critical, code)
		}
	}
}

// resourceColumns sizes the resource table in the order of its columns:
// code, name, level, fill, autonomy, status.
var resourceColumns = []ColumnSpec{
	{Fixed: 10, Priority: 5},
	{MinWidth: 10, Weight: 1, Priority: 4},
	{Fixed: 8, Priority: 6},
	{MinWidth: 8, Weight: 0.6, Priority: 1},
	{Fixed: 10, Priority: 3},
	{Fixed: 6, Priority: 2},
}

func (a *App) updateViewDimensions() {
	width := min(a.width, MaxContentWidth)
	a.resourcesView.SetColumnWidths(CalculateColumnWidths(resourceColumns, width, 3))
	// title, blank, header row, separator, help line, pager
	a.resourcesView.SetVisibleRows(max(ContentHeight(a.height, chromeLines)-6, 3))
}

func (a *App) newPopulationForm() *population.Form {
	f := population.NewForm(a.stats.Population)
	f.SetStyles(a.theme.Styles())
	return f
}

// handleKeyPress processes key press events.
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modals take priority
	if a.showConfirm {
		switch msg.String() {
		case "y", "Y", "enter":
			a.quitting = true
			return a, tea.Quit
		case "n", "N", "esc":
			a.showConfirm = false
		}
		return a, nil
	}

	if a.pendingDelete != "" {
		switch msg.String() {
		case "y", "Y":
			code := a.pendingDelete
			a.pendingDelete = ""
			return a, a.deleteResource(code)
		case "n", "N", "esc":
			a.pendingDelete = ""
		}
		return a, nil
	}

	// The form takes every key except navigation
	if a.currentModule == ModulePopulation && a.populationForm != nil {
		if a.keys.F10.Matches(msg) || msg.String() == "ctrl+c" {
			a.showConfirm = true
			return a, nil
		}
		if module, ok := a.keys.ModuleFor(msg); ok && msg.String() != "?" {
			return a.switchModule(module)
		}
		return a.handleFormKeys(msg)
	}

	if a.keys.IsQuit(msg) {
		a.showConfirm = true
		return a, nil
	}

	if module, ok := a.keys.ModuleFor(msg); ok {
		return a.switchModule(module)
	}

	if a.keys.Back.Matches(msg) {
		if a.showDetail {
			a.showDetail = false
			return a, nil
		}
		if a.currentModule == ModuleHelp && a.previousModule != "" {
			a.currentModule = a.previousModule
			a.previousModule = ""
		}
		return a, nil
	}

	if a.currentModule == ModuleResources {
		return a.handleResourceKeys(msg)
	}

	return a, nil
}

func (a *App) switchModule(module Module) (tea.Model, tea.Cmd) {
	if module == ModuleHelp {
		if a.currentModule != ModuleHelp {
			a.previousModule = a.currentModule
		}
		a.currentModule = ModuleHelp
		return a, nil
	}

	a.currentModule = module
	a.showDetail = false
	a.populationForm = nil

	switch module {
	case ModuleResources:
		return a, a.load()
	case ModulePopulation:
		a.populationForm = a.newPopulationForm()
	}
	return a, nil
}

// handleResourceKeys handles key presses in the resources module.
func (a *App) handleResourceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.keys.Delete.Matches(msg) {
		if card := a.resourcesView.Selected(); card != nil {
			a.pendingDelete = card.Code
		}
		return a, nil
	}

	if a.showDetail {
		return a, nil
	}

	switch {
	case a.keys.Up.Matches(msg):
		a.resourcesView.MoveUp()
	case a.keys.Down.Matches(msg):
		a.resourcesView.MoveDown()
	case a.keys.Select.Matches(msg):
		if card := a.resourcesView.Selected(); card != nil {
			a.showDetail = true
			a.resourcesView.SetHistory(nil)
			return a, a.loadHistory(card.Code)
		}
	}

	return a, nil
}

// handleFormKeys handles key presses in the population form.
func (a *App) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.populationForm.HandleKey(msg.String())

	if a.populationForm.IsCancelled() {
		a.populationForm = nil
		a.currentModule = ModuleDashboard
		return a, nil
	}

	if a.populationForm.IsSubmitted() {
		requested, err := a.populationForm.Value()
		if err != nil {
			return a, nil
		}
		return a, a.savePopulation(requested)
	}

	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}

	if a.quitting {
		return a.theme.Title.Render("Habitat monitor shutting down...")
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	b.WriteString(a.renderAlertBar())
	b.WriteString("\n")

	contentHeight := ContentHeight(a.height, chromeLines)
	switch {
	case a.showConfirm:
		b.WriteString(a.renderDialog(contentHeight, "CONFIRM EXIT", "Are you sure you want to exit?"))
	case a.pendingDelete != "":
		b.WriteString(a.renderDialog(contentHeight, "CONFIRM DELETE",
			fmt.Sprintf("Delete %s and its history?", a.pendingDelete)))
	default:
		b.WriteString(a.renderContent(contentHeight))
	}

	b.WriteString("\n")
	b.WriteString(a.renderFooter())

	return b.String()
}

// renderHeader renders the top header bar.
func (a *App) renderHeader() string {
	title := fmt.Sprintf("HABITAT MONITOR v%s", Version)
	info := fmt.Sprintf("%s | POP: %d", a.config.Habitat.Name, a.stats.Population)

	left := a.theme.Header.Render(title)
	right := a.theme.Header.Render(info)
	spacing := max(a.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	header := left + strings.Repeat(" ", spacing) + right

	return header + "\n" + a.theme.DrawDoubleLine(a.width)
}

// renderAlertBar renders the clock and the most recent alert.
func (a *App) renderAlertBar() string {
	timeStr := a.clock.Now().Format(a.config.Display.DateFormat + " " + a.config.Display.TimeFormat)

	var alertText string
	if len(a.alerts) > 0 {
		alert := a.alerts[0]
		switch alert.Level {
		case AlertCritical:
			alertText = a.theme.AlertCrit.Render("CRITICAL: " + alert.Message)
		case AlertWarning:
			alertText = a.theme.AlertWarn.Render("WARNING: " + alert.Message)
		default:
			alertText = a.theme.Alert.Render("INFO: " + alert.Message)
		}
	} else {
		alertText = a.theme.Muted.Render("All systems nominal")
	}

	return a.theme.Value.Render(timeStr) + a.theme.StatusDivider.Render() + alertText
}

// renderContent renders the main content area based on current module.
func (a *App) renderContent(height int) string {
	contentWidth := min(a.width, MaxContentWidth)

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Top)

	return style.Render(lipgloss.NewStyle().Width(contentWidth).Render(a.moduleContent(contentWidth)))
}

func (a *App) moduleContent(width int) string {
	switch a.currentModule {
	case ModuleResources:
		if a.showDetail {
			return a.resourcesView.RenderDetail(a.resourcesView.Selected())
		}
		return a.resourcesView.Render(width)
	case ModulePopulation:
		if a.populationForm == nil {
			a.populationForm = a.newPopulationForm()
		}
		return a.populationForm.Render()
	case ModuleHelp:
		return a.renderHelp()
	default:
		return a.renderDashboard(width)
	}
}

// renderDashboard renders the habitat overview.
func (a *App) renderDashboard(width int) string {
	var b strings.Builder

	b.WriteString(a.theme.Title.Render("═══ HABITAT STATUS OVERVIEW ═══"))
	b.WriteString("\n\n")

	critical := fmt.Sprintf("%d", a.stats.Critical)
	if a.stats.Critical > 0 {
		critical = a.theme.Error.Render(critical)
	}
	summary := fmt.Sprintf("Population:      %d\n", a.stats.Population) +
		fmt.Sprintf("Resources:       %d\n", a.stats.Monitored) +
		"Critical:        " + critical + "\n" +
		fmt.Sprintf("Average Level:   %.2f%%", a.stats.AveragePercentage)
	b.WriteString(a.theme.Panel("COLONY", summary, min(width, 40)))
	b.WriteString("\n\n")

	b.WriteString(a.theme.Subtitle.Render("RESOURCE LEVELS"))
	b.WriteString("\n")
	if len(a.cards) == 0 {
		b.WriteString(a.theme.Muted.Render("  No resources monitored."))
		b.WriteString("\n")
	}

	barWidth := 30
	if GetBreakpoint(width) == BreakpointNarrow {
		barWidth = 12
	}
	for _, c := range a.cards {
		name := PadRight(Truncate(c.Name, 12), 12)
		line := fmt.Sprintf("  %s %s %7.2f%%  %s",
			name, a.theme.LevelBar(c.CurrentPercentage, c.CriticalPercentage, barWidth),
			c.CurrentPercentage, resviews.FormatAutonomy(c.AutonomyHours))
		if c.IsCritical {
			line += " " + a.theme.Error.Render("CRITICAL")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if a.config.Simulation.Enabled {
		b.WriteString(a.theme.Subtitle.Render("SIMULATION"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  Tick Interval:      %s\n", a.config.Simulation.TickInterval.Duration))
		if last := lastUpdated(a.cards); !last.IsZero() {
			b.WriteString(fmt.Sprintf("  Last Update:        %s\n", util.RelativeTimeString(last, a.clock.Now())))
		}
	}

	return b.String()
}

func lastUpdated(cards []models.ResourceCard) time.Time {
	var last time.Time
	for _, c := range cards {
		if c.LastUpdated.After(last) {
			last = c.LastUpdated
		}
	}
	return last
}

// renderHelp renders the help screen.
func (a *App) renderHelp() string {
	var b strings.Builder

	b.WriteString(a.theme.Title.Render("═══ HELP ═══"))
	b.WriteString("\n\n")

	sections := []struct {
		title string
		items [][2]string
	}{
		{"NAVIGATION", [][2]string{
			{"F1 / ?", "Help"},
			{"F2", "Dashboard"},
			{"F3", "Resources"},
			{"F4", "Population"},
			{"F10 / q", "Quit"},
		}},
		{"CONTROLS", [][2]string{
			{"Up/Down", "Navigate"},
			{"Enter", "Details / Save"},
			{"d", "Delete resource"},
			{"Esc", "Back/Cancel"},
		}},
	}

	for _, s := range sections {
		b.WriteString(a.theme.Subtitle.Render(s.title))
		b.WriteString("\n\n")
		for _, item := range s.items {
			b.WriteString(a.theme.Primary.Render(fmt.Sprintf("    %-8s  %s", item[0], item[1])))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(a.theme.Muted.Render("Press Esc to return"))

	return b.String()
}

// renderDialog renders a centered yes/no dialog.
func (a *App) renderDialog(height int, title, question string) string {
	dialog := a.theme.Box.Render(
		a.theme.Title.Render(title) + "\n\n" +
			a.theme.Base.Render(question) + "\n\n" +
			a.theme.Label.Render("[Y]es  [N]o"),
	)

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return style.Render(dialog)
}

// renderFooter renders the bottom status bar.
func (a *App) renderFooter() string {
	return a.theme.DrawHorizontalLine(a.width) + "\n" + a.theme.Footer.Render(a.keys.StatusBarHelp(a.width))
}

// AddAlert adds a new alert to the display.
func (a *App) AddAlert(level AlertLevel, message string) {
	a.alerts = append([]Alert{{
		Level:   level,
		Message: message,
		Time:    a.clock.Now(),
	}}, a.alerts...)

	if len(a.alerts) > maxAlerts {
		a.alerts = a.alerts[:maxAlerts]
	}
}

// Alerts returns the current alerts, newest first.
func (a *App) Alerts() []Alert {
	return a.alerts
}

// ClearAlerts removes all alerts.
func (a *App) ClearAlerts() {
	a.alerts = nil
}

// Run starts the TUI application and blocks until it exits.
func Run(ctx context.Context, svc Service, cfg *config.Config, opts ...Option) error {
	p := tea.NewProgram(New(svc, cfg, opts...), tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
