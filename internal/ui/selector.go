package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// maxVisible is how many items the selector shows at once.
const maxVisible = 15

// SelectorItem represents an item in the selector
type SelectorItem struct {
	ID          string
	Label       string
	Description string
}

func (it SelectorItem) display() string {
	if it.Label != "" {
		return it.Label
	}
	return it.ID
}

// Selector is an interactive list with type-to-filter, used to pick a table.
type Selector struct {
	title    string
	items    []SelectorItem
	filter   string
	visible  []int
	cursor   int
	selected int
	active   bool
	width    int
}

// NewSelector creates a new selector
func NewSelector(title string, items []SelectorItem) Selector {
	s := Selector{
		title:    title,
		items:    items,
		selected: -1,
		active:   true,
		width:    80,
	}
	s.applyFilter()
	return s
}

func (s *Selector) SetWidth(w int) {
	s.width = w
}

// Active returns whether the selector is still waiting for a choice
func (s *Selector) Active() bool {
	return s.active
}

// Selected returns the selected item ID, or empty if cancelled
func (s *Selector) Selected() string {
	if s.selected >= 0 && s.selected < len(s.items) {
		return s.items[s.selected].ID
	}
	return ""
}

// Cancelled returns whether the selector was cancelled
func (s *Selector) Cancelled() bool {
	return !s.active && s.selected == -1
}

// Filter returns the current filter text.
func (s *Selector) Filter() string {
	return s.filter
}

func (s *Selector) applyFilter() {
	needle := strings.ToLower(s.filter)
	s.visible = s.visible[:0]
	for i, it := range s.items {
		if needle == "" || strings.Contains(strings.ToLower(it.display()), needle) {
			s.visible = append(s.visible, i)
		}
	}
	if s.cursor >= len(s.visible) {
		s.cursor = len(s.visible) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// Update handles selector input
func (s *Selector) Update(msg tea.Msg) (*Selector, tea.Cmd) {
	if !s.active {
		return s, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch key.Type {
	case tea.KeyUp:
		if s.cursor > 0 {
			s.cursor--
		}
	case tea.KeyDown:
		if s.cursor < len(s.visible)-1 {
			s.cursor++
		}
	case tea.KeyEnter:
		if len(s.visible) > 0 {
			s.selected = s.visible[s.cursor]
			s.active = false
		}
	case tea.KeyEsc, tea.KeyCtrlC:
		s.selected = -1
		s.active = false
	case tea.KeyBackspace:
		if s.filter != "" {
			r := []rune(s.filter)
			s.filter = string(r[:len(r)-1])
			s.applyFilter()
		}
	case tea.KeyRunes, tea.KeySpace:
		s.filter += string(key.Runes)
		if key.Type == tea.KeySpace {
			s.filter += " "
		}
		s.applyFilter()
	}

	return s, nil
}

// View renders the selector
func (s *Selector) View() string {
	if !s.active {
		return ""
	}

	var b strings.Builder

	b.WriteString(HelpStyle.Render(s.title + " (type to filter, ↑/↓ navigate, enter select, esc cancel)"))
	b.WriteString("\n")
	b.WriteString(PromptStyle.Render("filter "+SymbolPrompt) + " " + s.filter)
	b.WriteString("\n\n")

	if len(s.visible) == 0 {
		b.WriteString(NoticeStyle.Render("  no matches"))
		b.WriteString("\n")
		return b.String()
	}

	start := 0
	if s.cursor >= maxVisible {
		start = s.cursor - maxVisible + 1
	}
	end := start + maxVisible
	if end > len(s.visible) {
		end = len(s.visible)
	}

	for pos := start; pos < end; pos++ {
		item := s.items[s.visible[pos]]
		isCursor := pos == s.cursor

		if isCursor {
			b.WriteString(SelectorCursor.Render(SymbolArrow) + " ")
		} else {
			b.WriteString("  ")
		}

		label := fmt.Sprintf("%-35s", item.display())
		if isCursor {
			b.WriteString(SelectorActive.Render(label))
		} else {
			b.WriteString(SelectorItemStyle.Render(label))
		}
		if item.Description != "" {
			b.WriteString(SelectorDim.Render(item.Description))
		}
		b.WriteString("\n")
	}

	if hidden := len(s.visible) - (end - start); hidden > 0 {
		b.WriteString(SelectorDim.Render(fmt.Sprintf("  … %d more", hidden)))
		b.WriteString("\n")
	}

	return b.String()
}

// selectorProgram adapts a Selector to a standalone bubbletea program.
type selectorProgram struct {
	sel Selector
}

func (p selectorProgram) Init() tea.Cmd { return nil }

func (p selectorProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		p.sel.SetWidth(ws.Width)
		return p, nil
	}
	p.sel.Update(msg)
	if !p.sel.Active() {
		return p, tea.Quit
	}
	return p, nil
}

func (p selectorProgram) View() string {
	return p.sel.View()
}

// RunSelector shows the selector full screen and returns the chosen ID.
// An empty string means the user cancelled.
func RunSelector(title string, items []SelectorItem) (string, error) {
	final, err := tea.NewProgram(selectorProgram{sel: NewSelector(title, items)}).Run()
	if err != nil {
		return "", fmt.Errorf("selector failed: %w", err)
	}
	p, ok := final.(selectorProgram)
	if !ok {
		return "", nil
	}
	return p.sel.Selected(), nil
}
