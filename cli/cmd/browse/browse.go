// Package browse is an interactive fuzzy viewer over preprocessed lines.
package browse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/recline/line"
	"github.com/ardnew/recline/log"
)

const (
	filterPrompt  = "/ "
	defaultWidth  = 80
	defaultHeight = 24
	chromeHeight  = 2 // filter line and status line
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	originStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	textStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// lines adapts logical lines to [fuzzy.Source], matching on text only.
type lines []line.Line

func (l lines) String(i int) string { return l[i].Text }
func (l lines) Len() int            { return len(l) }

// model is the Bubble Tea model for the line browser.
type model struct {
	ctxFunc  func() context.Context
	input    textinput.Model
	logger   log.Logger
	all      lines
	matches  fuzzy.Matches
	chosen   *line.Line
	cursor   int // index into matches
	offset   int // first visible match
	width    int
	height   int
	quitting bool
}

// Run shows the lines in an interactive fuzzy filter. The line chosen with
// Enter, if any, is written to out.
func Run(
	ctx context.Context,
	all []line.Line,
	out io.Writer,
	logger log.Logger,
	opts ...tea.ProgramOption,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(ctx, "browse start", slog.Int("lines", len(all)))

	m := newModel(ctx, all, logger)

	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	final, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := final.(model); ok && fm.chosen != nil {
		_, err = fmt.Fprintln(out, fm.chosen.Text)
	}

	return err
}

func newModel(ctx context.Context, all []line.Line, logger log.Logger) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(filterPrompt)
	ti.Placeholder = "filter"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = defaultWidth

	m := model{
		ctxFunc: func() context.Context { return ctx },
		input:   ti,
		logger:  logger,
		all:     all,
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.refresh()

	return m
}

// refresh recomputes the matches for the current filter and resets the
// selection.
func (m *model) refresh() {
	pattern := m.input.Value()

	if strings.TrimSpace(pattern) == "" {
		m.matches = make(fuzzy.Matches, len(m.all))
		for i, ln := range m.all {
			m.matches[i] = fuzzy.Match{Str: ln.Text, Index: i}
		}
	} else {
		m.matches = fuzzy.FindFrom(pattern, m.all)
	}

	m.cursor, m.offset = 0, 0
}

func (m model) rows() int {
	return max(1, m.height-chromeHeight)
}

// move shifts the cursor by delta and scrolls to keep it visible.
func (m *model) move(delta int) {
	if len(m.matches) == 0 {
		return
	}

	m.cursor = min(max(m.cursor+delta, 0), len(m.matches)-1)

	switch rows := m.rows(); {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+rows:
		m.offset = m.cursor - rows + 1
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - len(filterPrompt) - 2
		m.move(0)

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "browse keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		if len(m.matches) > 0 {
			ln := m.all[m.matches[m.cursor].Index]
			m.chosen = &ln
		}

		m.quitting = true

		return m, tea.Quit

	case tea.KeyUp, tea.KeyCtrlP:
		m.move(-1)

		return m, nil

	case tea.KeyDown, tea.KeyCtrlN:
		m.move(1)

		return m, nil

	case tea.KeyPgUp:
		m.move(-m.rows())

		return m, nil

	case tea.KeyPgDown:
		m.move(m.rows())

		return m, nil
	}

	var cmd tea.Cmd

	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != before {
		m.refresh()
	}

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	end := min(m.offset+m.rows(), len(m.matches))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.matches[i], i == m.cursor))
		b.WriteString("\n")
	}

	status := strconv.Itoa(len(m.matches)) + "/" + strconv.Itoa(len(m.all))
	b.WriteString(hintStyle.Render(status + "  enter: print  esc: quit"))

	return b.String()
}

// renderRow renders one match with its origin and matched runes
// highlighted.
func (m model) renderRow(match fuzzy.Match, selected bool) string {
	ln := m.all[match.Index]
	origin := ln.Source + ":" + strconv.Itoa(ln.Position) + ": "

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	base := textStyle
	if selected {
		base = selectedStyle
	}

	var b strings.Builder

	b.WriteString(originStyle.Render(origin))

	// Continued lines may hold newlines; show them on one row.
	for i, r := range ln.Text {
		ch := string(r)
		if r == '\n' {
			ch = "⏎"
		}

		if matchSet[i] {
			b.WriteString(highlightStyle.Inherit(base).Render(ch))
		} else {
			b.WriteString(base.Render(ch))
		}
	}

	return b.String()
}
