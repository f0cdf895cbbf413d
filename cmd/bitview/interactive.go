package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/bitrec"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type fieldRow struct {
	field *bitrec.Field
	depth int
}

// flatten lists a field and all of its descendants depth-first, in
// declaration/index order.
func flatten(f *bitrec.Field, depth int) []fieldRow {
	rows := []fieldRow{{field: f, depth: depth}}
	switch f.Type().Kind {
	case bitrec.KindStruct:
		for _, name := range f.Names() {
			c, _ := f.Field(name)
			rows = append(rows, flatten(c, depth+1)...)
		}
	case bitrec.KindArray, bitrec.KindSlice:
		for _, el := range f.Elems() {
			rows = append(rows, flatten(el, depth+1)...)
		}
	}
	return rows
}

type interactiveModel struct {
	err        error
	root       *bitrec.Field
	schemaFile string
	hexValue   string
	status     string
	rows       []fieldRow
	input      textinput.Model
	selected   int
	state      modelState
}

type modelState int

const (
	stateBrowse modelState = iota
	stateEdit
)

func newInteractiveModel(schemaFile, hexValue string) *interactiveModel {
	return &interactiveModel{
		schemaFile: schemaFile,
		hexValue:   hexValue,
		state:      stateBrowse,
	}
}

type loadedMsg struct {
	err  error
	root *bitrec.Field
	rows []fieldRow
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadRecord
}

func (m *interactiveModel) loadRecord() tea.Msg {
	root, err := loadRecord(m.schemaFile, m.hexValue)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{root: root, rows: flatten(root, 0)}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateBrowse {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.rows)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.rows) == 0 {
					break
				}
				m.prepareInput()
				m.state = stateEdit

			case stateEdit:
				m.applyEdit()
				m.state = stateBrowse
			}

		case "esc":
			if m.state == stateEdit {
				m.state = stateBrowse
				m.status = ""
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.root = msg.root
		m.rows = msg.rows
	}

	if m.state == stateEdit {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) prepareInput() {
	f := m.rows[m.selected].field
	ti := textinput.New()
	ti.Prompt = f.Name() + " = "
	ti.Placeholder = f.String()
	ti.Width = 48
	ti.Focus()
	m.input = ti
	m.status = ""
}

func (m *interactiveModel) applyEdit() {
	f := m.rows[m.selected].field
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return
	}
	if err := assign(f, value); err != nil {
		m.status = errorStyle.Render(fmt.Sprintf("Error: %v", err))
		return
	}
	m.status = valueStyle.Render(fmt.Sprintf("%s = %s", f.Name(), f.String()))
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.root == nil {
		return "Loading record..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Bit Register Inspector"))
	b.WriteString(" ")
	b.WriteString(m.schemaFile)
	b.WriteString("\n\n")
	b.WriteString("Register: ")
	b.WriteString(valueStyle.Render("0x" + m.root.Hex()))
	b.WriteString("\n\n")

	for i, row := range m.rows {
		line := strings.Repeat("  ", row.depth) + m.formatRow(row)
		if i == m.selected && m.state == stateBrowse {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case stateBrowse:
		if m.status != "" {
			b.WriteString(m.status)
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • q quit"))

	case stateEdit:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	}

	return b.String()
}

func (m *interactiveModel) formatRow(row fieldRow) string {
	f := row.field
	name := f.Name()
	if i := strings.LastIndexAny(name, "."); i >= 0 && row.depth > 0 {
		name = name[i+1:]
	}
	return fieldStyle.Render(name) + " " +
		typeStyle.Render(f.Type().Repr()) + " = " +
		valueStyle.Render(f.String())
}

func runInteractive(schemaFile, hexValue string) error {
	p := tea.NewProgram(newInteractiveModel(schemaFile, hexValue), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
