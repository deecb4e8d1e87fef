package console

import (
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/trigg3rX/mining-cli/internal/modeloop"
)

const (
	menuWidth  = 72
	menuHeight = 20
)

type modeItem struct {
	mode modeloop.RunMode
}

func (i modeItem) Title() string       { return i.mode.String() }
func (i modeItem) Description() string { return i.mode.Description() }
func (i modeItem) FilterValue() string { return i.mode.String() }

// menuModel is the bubbletea model behind the mode selection menu.
type menuModel struct {
	list      list.Model
	choice    modeloop.RunMode
	chosen    bool
	cancelled bool
}

func newMenuModel(modes []modeloop.RunMode) menuModel {
	items := make([]list.Item, 0, len(modes))
	for _, mode := range modes {
		items = append(items, modeItem{mode: mode})
	}

	l := list.New(items, list.NewDefaultDelegate(), menuWidth, menuHeight)
	l.Title = "Select mode"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return menuModel{list: l}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "enter":
			return m.choose()
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		default:
			// Number keys jump straight to a mode, as in the line-based menu
			if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.list.Items()) {
				m.list.Select(n - 1)
				return m.choose()
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m menuModel) choose() (tea.Model, tea.Cmd) {
	if item, ok := m.list.SelectedItem().(modeItem); ok {
		m.choice = item.mode
		m.chosen = true
	}
	return m, tea.Quit
}

func (m menuModel) View() string {
	if m.chosen || m.cancelled {
		return ""
	}
	return m.list.View()
}
