package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.switchTab((m.active + 1) % tab(len(m.tables)))
			return m, nil
		case "shift+tab", "left", "h":
			m.switchTab((m.active + tab(len(m.tables)) - 1) % tab(len(m.tables)))
			return m, nil
		}
	}

	m.tables[m.active], cmd = m.tables[m.active].Update(msg)
	return m, cmd
}

func (m *ResultsModel) switchTab(next tab) {
	m.tables[m.active].Blur()
	m.active = next
	m.tables[m.active].Focus()
}
