package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"connections/internal/domain"
	"connections/internal/ranking"
	"connections/internal/service"
)

// BrowsePort is the TUI-facing subset of the pipeline service.
type BrowsePort interface {
	Rank(ctx context.Context, query string, topK int) ([]domain.Match, error)
	Contact(name string) (service.ContactDetail, error)
}

// Model is the Bubble Tea model for the contacts browser.
type Model struct {
	ctx       context.Context
	service   BrowsePort
	topK      int
	input     textinput.Model
	viewport  viewport.Model
	results   []domain.Match
	summary   string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a browser listing every contact until a query is entered.
func New(ctx context.Context, service BrowsePort, summary []domain.TermCount, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Who can help with... (Enter to rank)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{
		ctx:      ctx,
		service:  service,
		topK:     topK,
		input:    ti,
		viewport: vp,
		summary:  formatSummary(summary),
	}
	if res, err := service.Rank(ctx, "", 0); err != nil {
		m.status = "Error: " + err.Error()
	} else {
		m.results = res
		m.status = fmt.Sprintf("%d contacts loaded. Type to rank.", len(res))
	}
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2
		totalFooterLines := 1
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := max(msg.Height-reserved, 3)
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			res, err := m.service.Rank(m.ctx, q, m.topK)
			if err != nil {
				m.status = "Error: " + err.Error()
				m.results = nil
			} else {
				m.status = fmt.Sprintf("%d matches for %q", len(res), q)
				m.results = res
				m.cursor = 0
				m.lastQuery = q
			}
			m.viewport.SetContent(m.renderCurrent())
			return m, nil
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current contact.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Connections")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

// Selected returns the match under the cursor.
func (m Model) Selected() (domain.Match, bool) {
	if len(m.results) == 0 {
		return domain.Match{}, false
	}
	return m.results[m.cursor], true
}

func (m Model) renderCurrent() string {
	r, ok := m.Selected()
	if !ok {
		return "No contacts."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d  %s\n", m.cursor+1, len(m.results), titleStyle.Render(r.Name))
	fmt.Fprintf(&b, "score=%.3f  keyword=%.1f  intent=%.1f  similarity=%.3f\n\n",
		r.Score, r.Keyword, r.Intent, r.Similarity)

	d, err := m.service.Contact(r.Name)
	if err != nil {
		b.WriteString("Error: " + err.Error())
		return b.String()
	}
	b.WriteString(labelStyle.Render("Entries") + "\n")
	for i, e := range d.Entries {
		fmt.Fprintf(&b, "  %q -> %s\n", string(e), highlightTokens(d.Tokens[i], m.lastQuery))
	}
	if len(d.Terms) > 0 {
		terms := make([]string, len(d.Terms))
		for i, t := range d.Terms {
			terms[i] = fmt.Sprintf("%s %.2f", t.Term, t.Weight)
		}
		b.WriteString(labelStyle.Render("Keywords") + "  " + strings.Join(terms, ", ") + "\n")
	}
	if d.Cluster != "" && d.Cluster != d.Name {
		b.WriteString(labelStyle.Render("Cluster") + "  " + d.Cluster + "\n")
	}
	if len(d.Nearest) > 0 {
		near := make([]string, len(d.Nearest))
		for i, h := range d.Nearest {
			near[i] = fmt.Sprintf("%s %.2f", h.Name, h.Score)
		}
		b.WriteString(labelStyle.Render("Nearest") + "  " + strings.Join(near, ", ") + "\n")
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// highlightTokens renders tokens as a bracketed list, emphasising those that
// share a word with query.
func highlightTokens(tokens domain.TokenList, query string) string {
	qset := make(map[string]struct{})
	for _, t := range ranking.Tokenize(query) {
		qset[t] = struct{}{}
	}
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok
		for _, w := range ranking.Tokenize(tok) {
			if _, ok := qset[w]; ok {
				out[i] = highlightStyle.Render(tok)
				break
			}
		}
	}
	return "[" + strings.Join(out, ", ") + "]"
}

func formatSummary(terms []domain.TermCount) string {
	if len(terms) == 0 {
		return "network: (empty)"
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = fmt.Sprintf("%s (%d)", t.Term, t.Count)
	}
	return "network: " + strings.Join(parts, ", ")
}
