package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/sandeepkv93/catalog-console/internal/catalog"
	"github.com/sandeepkv93/catalog-console/internal/validation"
)

type pane int

const (
	paneList pane = iota
	paneForm
)

type formField struct {
	name    string
	label   string
	value   string
	message string
}

type actionKind string

const (
	actionRender actionKind = "render"
	actionSubmit actionKind = "submit"
	actionDelete actionKind = "delete"
	actionBlur   actionKind = "blur"
)

type actionMsg struct {
	kind  actionKind
	snap  *snapshot
	stale bool
	err   error
}

// Model is the interactive catalog screen: a card list and the product form.
type Model struct {
	ctx       context.Context
	products  catalog.ProductService
	validator catalog.FormValidator
	logger    *slog.Logger
	scope     string

	cards    []catalog.Card
	banner   *catalog.Banner
	notice   *catalog.Notice
	selected int
	pending  int

	fields []formField
	pane   pane
	active int
}

var fieldLabels = map[string]string{
	validation.FieldName:  "Name",
	validation.FieldPrice: "Price",
	validation.FieldImage: "Image URL",
}

func New(ctx context.Context, products catalog.ProductService, validator catalog.FormValidator, fields []validation.Field, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	m := Model{
		ctx:       ctx,
		products:  products,
		validator: validator,
		logger:    logger,
		scope:     uuid.NewString(),

		// the initial render started by Init
		pending: 1,
	}
	for _, f := range fields {
		m.fields = append(m.fields, formField{name: f.Name, label: fieldLabels[f.Name]})
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.run(actionRender, func(ctx context.Context, c *catalog.Controller) (bool, error) {
		return false, c.Render(ctx)
	})
}

func (m Model) values() map[string]string {
	out := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		out[f.name] = f.value
	}
	return out
}

// run executes one controller action against a fresh snapshot of the form.
func (m *Model) run(kind actionKind, action func(context.Context, *catalog.Controller) (bool, error)) tea.Cmd {
	m.pending++
	snap := newSnapshot(m.values())
	ctx := validation.WithScope(m.ctx, m.scope)
	products, validator, logger := m.products, m.validator, m.logger
	return func() tea.Msg {
		ctrl := catalog.NewController(products, snap, snap, validator, logger)
		stale, err := action(ctx, ctrl)
		return actionMsg{kind: kind, snap: snap, stale: stale, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case actionMsg:
		if m.pending > 0 {
			m.pending--
		}
		if msg.stale {
			return m, nil
		}
		m.apply(msg.snap)
		if msg.err != nil {
			m.logger.Debug("catalog action finished with error", "action", string(msg.kind), "error", msg.err)
		}
	}
	return m, nil
}

func (m *Model) apply(s *snapshot) {
	if s.listTouched {
		m.cards = s.cards
		m.banner = s.banner
		if m.selected >= len(m.cards) {
			m.selected = max(len(m.cards)-1, 0)
		}
	}
	if len(s.notices) > 0 {
		n := s.notices[len(s.notices)-1]
		m.notice = &n
	}
	if s.reset {
		for i := range m.fields {
			m.fields[i].value = ""
		}
	}
	for i := range m.fields {
		if msg, ok := s.messages[m.fields[i].name]; ok {
			m.fields[i].message = msg
		}
	}
	if s.focus != "" {
		for i := range m.fields {
			if m.fields[i].name == s.focus {
				m.pane = paneForm
				m.active = i
			}
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m.moveFocus(1)
	case "shift+tab":
		return m.moveFocus(-1)
	}
	if m.pane == paneList {
		return m.handleListKey(msg)
	}
	return m.handleFormKey(msg)
}

// moveFocus cycles list -> fields -> list. Leaving a field validates it.
func (m Model) moveFocus(step int) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	slots := len(m.fields) + 1
	cur := 0
	if m.pane == paneForm {
		cur = m.active + 1
		field := m.fields[m.active].name
		cmd = m.run(actionBlur, func(ctx context.Context, c *catalog.Controller) (bool, error) {
			res, err := c.Blur(ctx, field)
			return res.Stale, err
		})
	}
	next := ((cur+step)%slots + slots) % slots
	if next == 0 {
		m.pane = paneList
	} else {
		m.pane = paneForm
		m.active = next - 1
	}
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.cards)-1 {
			m.selected++
		}
	case "r":
		cmd := m.run(actionRender, func(ctx context.Context, c *catalog.Controller) (bool, error) {
			return false, c.Render(ctx)
		})
		return m, cmd
	case "d":
		if m.selected >= len(m.cards) {
			return m, nil
		}
		target := deleteButton{card: cardElement{id: m.cards[m.selected].ID}}
		cmd := m.run(actionDelete, func(ctx context.Context, c *catalog.Controller) (bool, error) {
			_, err := c.Click(ctx, target)
			return false, err
		})
		return m, cmd
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		cmd := m.run(actionSubmit, func(ctx context.Context, c *catalog.Controller) (bool, error) {
			_, err := c.Submit(ctx)
			return false, err
		})
		return m, cmd
	case tea.KeyCtrlL:
		// Clear touches only the form, so it runs inline.
		snap := newSnapshot(m.values())
		catalog.NewController(m.products, snap, snap, m.validator, m.logger).Clear()
		m.apply(snap)
		return m, nil
	case tea.KeyEsc:
		m.pane = paneList
		return m, nil
	case tea.KeyBackspace:
		v := []rune(m.fields[m.active].value)
		if len(v) > 0 {
			m.fields[m.active].value = string(v[:len(v)-1])
		}
		return m, nil
	case tea.KeySpace:
		m.fields[m.active].value += " "
		return m, nil
	case tea.KeyRunes:
		m.fields[m.active].value += string(msg.Runes)
		return m, nil
	}
	return m, nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(40)
	selectedStyle = cardStyle.BorderForeground(lipgloss.Color("63"))
	bannerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	labelStyle    = lipgloss.NewStyle().Width(11)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Product catalog"))
	if m.pending > 0 {
		b.WriteString(helpStyle.Render("  working..."))
	}
	b.WriteString("\n\n")

	b.WriteString(m.listView())
	b.WriteString("\n")
	b.WriteString(m.formView())

	if m.notice != nil {
		style := okStyle
		if m.notice.Level == catalog.NoticeError {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.notice.Text) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("tab: switch focus  j/k: select  d: delete  r: refresh  enter: add  ctrl+l: clear  q: quit"))
	return b.String()
}

func (m Model) listView() string {
	if m.banner != nil {
		style := bannerStyle
		if m.banner.Kind == catalog.BannerError {
			style = errorStyle
		}
		return style.Render(m.banner.Message) + "\n"
	}
	cards := make([]string, 0, len(m.cards))
	for i, c := range m.cards {
		style := cardStyle
		if m.pane == paneList && i == m.selected {
			style = selectedStyle
		}
		cards = append(cards, style.Render(fmt.Sprintf("%s\n%s\n%s", c.Name, c.PriceText, c.Image)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...) + "\n"
}

func (m Model) formView() string {
	var b strings.Builder
	for i, f := range m.fields {
		label := labelStyle.Render(f.label)
		value := f.value
		if m.pane == paneForm && i == m.active {
			label = activeStyle.Inherit(labelStyle).Render(f.label)
			value += "_"
		}
		b.WriteString(label + " " + value + "\n")
		if f.message != "" {
			b.WriteString(labelStyle.Render("") + " " + errorStyle.Render(f.message) + "\n")
		}
	}
	return b.String()
}

// Run starts the full-screen catalog UI and blocks until the user quits.
func Run(ctx context.Context, products catalog.ProductService, validator catalog.FormValidator, fields []validation.Field, logger *slog.Logger) error {
	p := tea.NewProgram(New(ctx, products, validator, fields, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
