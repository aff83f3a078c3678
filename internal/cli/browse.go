package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/internal/core"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// Filter cycles, starting from ALL.
var (
	statusCycle   = cycleOf(models.Statuses)
	priorityCycle = cycleOf(models.Priorities)
	categoryCycle = cycleOf(models.Categories)
)

func cycleOf[T ~string](values []T) []string {
	out := []string{core.FilterAll}
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

// nextIn returns the value after current in cycle, wrapping around. An
// unknown current value restarts the cycle.
func nextIn(cycle []string, current string) string {
	for i, v := range cycle {
		if v == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

type browseModel struct {
	ctx  context.Context
	tm   core.TaskManager
	sess *models.Session
	now  func() time.Time

	all     []models.Task
	visible []models.Task
	params  core.QueryParams
	cursor  int
	width   int
	height  int

	searching     bool
	confirmDelete int64
	loading       bool
	notice        string
	err           error
}

// tasksLoadedMsg carries a fresh task list back to the model.
type tasksLoadedMsg struct {
	tasks []models.Task
	err   error
}

// taskChangedMsg reports the outcome of a mutation.
type taskChangedMsg struct {
	notice string
	err    error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	filterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	statusTodo       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusDone       = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

func newBrowseModel(ctx context.Context, tm core.TaskManager, sess *models.Session, params core.QueryParams) browseModel {
	if params.SortBy == "" {
		params = core.DefaultQueryParams()
	}
	return browseModel{
		ctx:     ctx,
		tm:      tm,
		sess:    sess,
		now:     time.Now,
		params:  params,
		loading: true,
	}
}

func (m browseModel) Init() tea.Cmd {
	return m.loadTasks
}

func (m browseModel) loadTasks() tea.Msg {
	tasks, err := m.tm.ListTasks(m.ctx, m.sess, core.DefaultQueryParams())
	return tasksLoadedMsg{tasks: tasks, err: err}
}

func (m browseModel) selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return models.Task{}, false
	}
	return m.visible[m.cursor], true
}

// refilter reapplies the query to the loaded tasks and keeps the cursor in
// range.
func (m *browseModel) refilter() {
	m.visible = core.ApplyQuery(m.all, m.params)
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.all = msg.tasks
		m.refilter()
		return m, nil

	case taskChangedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.notice = ""
			return m, nil
		}
		m.err = nil
		m.notice = msg.notice
		m.loading = true
		return m, m.loadTasks

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.confirmDelete != 0 {
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m browseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
	case tea.KeyBackspace:
		if r := []rune(m.params.Search); len(r) > 0 {
			m.params.Search = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.params.Search += string(msg.Runes)
	}
	m.refilter()
	return m, nil
}

func (m browseModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmDelete
	m.confirmDelete = 0
	if msg.String() != "y" {
		m.notice = "Delete cancelled."
		return m, nil
	}
	tm, ctx, sess := m.tm, m.ctx, m.sess
	return m, func() tea.Msg {
		if err := tm.DeleteTask(ctx, sess, id); err != nil {
			return taskChangedMsg{err: err}
		}
		return taskChangedMsg{notice: fmt.Sprintf("Deleted task #%d.", id)}
	}
}

func (m browseModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "/":
		m.searching = true
	case "s":
		m.params.Status = nextIn(statusCycle, m.params.Status)
		m.refilter()
	case "p":
		m.params.Priority = nextIn(priorityCycle, m.params.Priority)
		m.refilter()
	case "c":
		m.params.Category = nextIn(categoryCycle, m.params.Category)
		m.refilter()
	case "o":
		m.params.SortBy = core.NextSortKey(m.params.SortBy)
		m.refilter()
	case "r":
		m.params.SortOrder = core.ToggleOrder(m.params.SortOrder)
		m.refilter()
	case "R":
		m.loading = true
		m.notice = ""
		return m, m.loadTasks
	case "d":
		if t, ok := m.selected(); ok {
			m.confirmDelete = t.ID
		}
	case "x":
		if t, ok := m.selected(); ok {
			return m, m.toggleCompleted(t)
		}
	}
	return m, nil
}

// toggleCompleted flips a task between COMPLETED and TODO.
func (m browseModel) toggleCompleted(t models.Task) tea.Cmd {
	next := models.StatusCompleted
	if t.Status == models.StatusCompleted {
		next = models.StatusTodo
	}
	tm, ctx, sess := m.tm, m.ctx, m.sess
	return func() tea.Msg {
		if _, err := tm.UpdateStatus(ctx, sess, t.ID, next); err != nil {
			return taskChangedMsg{err: err}
		}
		return taskChangedMsg{notice: fmt.Sprintf("Task #%d is now %s.", t.ID, next)}
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" taskdeck "))
	b.WriteString("\n\n")
	b.WriteString(filterStyle.Render(m.filterLine()))
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.all) == 0:
		b.WriteString("  Loading tasks...\n")
	case len(m.visible) == 0:
		b.WriteString("  No tasks match.\n")
	default:
		m.renderRows(&b)
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("  " + core.UserMessage(m.err)))
		if errors.Is(m.err, core.ErrSessionExpired) {
			b.WriteString(helpStyle.Render("  (quit and run 'tdeck login')"))
		}
		b.WriteString("\n")
	case m.confirmDelete != 0:
		b.WriteString(errorStyle.Render(fmt.Sprintf("  Delete task #%d? (y/N)", m.confirmDelete)))
		b.WriteString("\n")
	case m.notice != "":
		b.WriteString(noticeStyle.Render("  " + m.notice))
		b.WriteString("\n")
	}

	if m.searching {
		b.WriteString(helpStyle.Render("type to search | enter/esc: done"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓: move | /: search | s/p/c: status/priority/category | o: sort | r: reverse | x: complete | d: delete | R: refresh | q: quit"))
	}
	return b.String()
}

func (m browseModel) filterLine() string {
	search := m.params.Search
	if m.searching {
		search += "_"
	}
	return fmt.Sprintf("search: %q  status: %s  priority: %s  category: %s  sort: %s %s  (%d/%d)",
		search, orAll(m.params.Status), orAll(m.params.Priority), orAll(m.params.Category),
		m.params.SortBy, m.params.SortOrder, len(m.visible), len(m.all))
}

func orAll(s string) string {
	if s == "" {
		return core.FilterAll
	}
	return s
}

// renderRows writes the rows that fit the window, scrolled so the cursor
// stays visible.
func (m browseModel) renderRows(b *strings.Builder) {
	rows := len(m.visible)
	if m.height > 0 {
		if fit := m.height - 8; fit > 0 && fit < rows {
			rows = fit
		}
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}

	today := m.now()
	for i := start; i < start+rows && i < len(m.visible); i++ {
		t := m.visible[i]
		due := "-"
		if !t.DueDate.IsZero() {
			due = t.DueDate.String()
		}
		status := styleForStatus(t.Status).Render(fmt.Sprintf("%-12s", t.Status))
		line := fmt.Sprintf("#%-6d %s %-7s %-10s %-11s %s", t.ID, status, t.Priority, t.Category, due, t.Title)
		if t.Overdue(today) {
			line = overdueStyle.Render(line + " (overdue)")
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
}

func styleForStatus(status models.TaskStatus) lipgloss.Style {
	switch status {
	case models.StatusTodo:
		return statusTodo
	case models.StatusInProgress:
		return statusInProgress
	case models.StatusCompleted:
		return statusDone
	default:
		return lipgloss.NewStyle()
	}
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive task list",
	Long: `Launch an interactive list of your tasks.

Search with /, cycle the status, priority and category filters with s, p
and c, cycle the sort key with o and reverse it with r. Toggle the selected
task's completion with x, delete it with d, refresh with R, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		p := tea.NewProgram(newBrowseModel(context.Background(), TaskMgr, sess, QueryDefaults), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
