package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/reconcile"
)

const maxPasses = 200

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PassListView ViewState = iota
	DetailView
)

// Driver is what the watch view reads from and can trigger. [reconcile.Driver] implements it.
type Driver interface {
	Gate() reconcile.Gate
	State() *reconcile.State
	Pass(ctx context.Context) reconcile.PassReport
}

// Totals accumulates counts across every pass seen.
type Totals struct {
	Passes   int
	Skipped  int
	Deletes  int
	Updates  int
	Failures int
}

func (t *Totals) add(r reconcile.PassReport) {
	t.Passes++
	if r.Skipped {
		t.Skipped++
	}
	t.Deletes += r.Deletes()
	t.Updates += r.Updates()
	t.Failures += r.Failures()
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	driver   Driver
	reports  <-chan reconcile.PassReport
	width    int
	height   int
	passList list.Model
	detail   list.Model
	selected *reconcile.PassReport
	totals   Totals
	closed   bool
	help     help.Model
	keys     keyMap
}

// NewModel creates a watch model that follows reports and reads status from driver.
func NewModel(ctx context.Context, driver Driver, reports <-chan reconcile.PassReport) *Model {
	passes := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	passes.Title = "Reconciliation passes"
	passes.SetShowHelp(false)

	return &Model{
		ctx:      ctx,
		view:     PassListView,
		driver:   driver,
		reports:  reports,
		passList: passes,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Totals returns the counts accumulated so far.
func (m *Model) Totals() Totals { return m.totals }

// Init starts waiting for the first pass report.
func (m *Model) Init() tea.Cmd {
	return m.waitForReport()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.passList.SetSize(msg.Width-4, msg.Height-10)
		if m.selected != nil {
			m.detail.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PassListView:
			return m.handlePassListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgPassReport:
			report := msg.data.(reconcile.PassReport)
			m.totals.add(report)
			cmd := m.passList.InsertItem(0, passItem{report: report})
			if n := len(m.passList.Items()); n > maxPasses {
				m.passList.RemoveItem(n - 1)
			}
			return m, tea.Batch(cmd, m.waitForReport())
		case MsgReportsClosed:
			m.closed = true
			return m, tea.Quit
		}
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case DetailView:
		return m.renderDetail()
	default:
		return m.renderPassList()
	}
}

func (m *Model) handlePassListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.passList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.pass):
		return m, m.runPass()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.passList.SelectedItem().(passItem); ok {
			m.openDetail(item.report)
			return m, nil
		}
	}
	return m.updateLists(msg)
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PassListView
		m.selected = nil
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) openDetail(report reconcile.PassReport) {
	results := report.Results()
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = writeItem{result: r}
	}

	m.detail = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.detail.Title = report.Summary()
	m.detail.SetShowHelp(false)
	m.detail.SetSize(m.width-4, m.height-10)
	m.selected = &report
	m.view = DetailView
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PassListView:
		m.passList, cmd = m.passList.Update(msg)
	case DetailView:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

// runPass triggers a pass; its report arrives through the reports channel.
func (m *Model) runPass() tea.Cmd {
	if m.driver == nil {
		return nil
	}
	return func() tea.Msg {
		m.driver.Pass(m.ctx)
		return nil
	}
}

func (m *Model) waitForReport() tea.Cmd {
	return func() tea.Msg {
		if m.reports == nil {
			return reportsClosedMsg()
		}
		select {
		case report, ok := <-m.reports:
			if !ok {
				return reportsClosedMsg()
			}
			return passReportMsg(report)
		case <-m.ctx.Done():
			return reportsClosedMsg()
		}
	}
}

func (m *Model) renderHeader() string {
	title := styles.title.Render("Roster reconciliation")

	gate := "unknown"
	var counts string
	if m.driver != nil {
		gate = styles.Gate(m.driver.Gate())
		counts = formatCounts(m.driver.State().Counts())
	}

	status := fmt.Sprintf("Gate: %s   Passes: %d (%d skipped)   Deleted: %s   Updated: %s   Failed: %s",
		gate,
		m.totals.Passes,
		m.totals.Skipped,
		styles.ok.Render(fmt.Sprint(m.totals.Deletes)),
		styles.ok.Render(fmt.Sprint(m.totals.Updates)),
		m.failures(),
	)
	if counts != "" {
		status += "\n" + styles.help.Render(counts)
	}
	if m.closed {
		status += "\n" + styles.warn.Render("Driver stopped")
	}
	return fmt.Sprintf("%s\n%s", title, status)
}

func (m *Model) failures() string {
	s := fmt.Sprint(m.totals.Failures)
	if m.totals.Failures > 0 {
		return styles.err.Render(s)
	}
	return styles.ok.Render(s)
}

func (m *Model) renderPassList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.pass, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	body := m.passList.View()
	if len(m.passList.Items()) == 0 {
		body = styles.help.Render("Waiting for the first pass...")
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", m.renderHeader(), body, helpView)
}

func (m *Model) renderDetail() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.selected != nil && m.selected.Skipped {
		msg := styles.warn.Render(fmt.Sprintf("Pass skipped: gate was %s", m.selected.Gate))
		return fmt.Sprintf("%s\n\n%s\n\n%s", m.renderHeader(), msg, helpView)
	}
	if len(m.detail.Items()) == 0 {
		msg := styles.ok.Render("✓ Nothing to reconcile")
		return fmt.Sprintf("%s\n\n%s\n\n%s", m.renderHeader(), msg, helpView)
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", m.renderHeader(), m.detail.View(), helpView)
}

func formatCounts(counts map[models.Collection]int) string {
	if len(counts) == 0 {
		return ""
	}
	names := make([]string, 0, len(counts))
	for c := range counts {
		names = append(names, string(c))
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s %d", n, counts[models.Collection(n)]))
	}
	return strings.Join(parts, " • ")
}
