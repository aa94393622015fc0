// Package tui is the interactive chat front end.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"heritage-rag/internal/domain"
	"heritage-rag/internal/summarizer"
)

// Asker is the TUI-facing subset of the RAG service.
type Asker interface {
	Ask(ctx context.Context, question string) domain.QueryResult
}

// Examples are offered with Tab when the input is empty.
var Examples = []string{
	"Parle-moi de Carthage",
	"Le théâtre de Dougga ?",
	"L'amphithéâtre d'El Jem",
	"Sites puniques",
	"Compare Carthage et Dougga",
}

const (
	welcome   = "👋 Bienvenue ! Posez une question sur les sites archéologiques tunisiens."
	noSources = "ℹ️ Aucune source trouvée pour cette question."
	helpLine  = "enter: envoyer • tab: exemple • ctrl+o: sources • ctrl+t: métriques • ctrl+s: sauvegarder • ctrl+l: effacer • esc: quitter"
)

// Options configures the chat model.
type Options struct {
	// Model is shown in the header.
	Model string
	// ExportDir receives saved conversations; defaults to the working directory.
	ExportDir    string
	Summarizer   *summarizer.FrequencySummarizer
	MaxSentences int
	Now          func() time.Time
}

type answerMsg struct {
	round  int
	result domain.QueryResult
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx      context.Context
	service  Asker
	opts     Options
	session  string
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	messages    []Message
	queryCount  int
	showSources bool
	showMetrics bool
	pending     bool
	example     int
	status      string
	width       int
	ready       bool

	// round is bumped on clear so that answers to cleared questions are dropped.
	round int
}

// New creates a new chat model. ctx bounds every question asked from the UI.
func New(ctx context.Context, service Asker, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ti := textinput.New()
	ti.Prompt = "💬 "
	ti.Placeholder = "Tapez votre question..."
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	return Model{
		ctx:         ctx,
		service:     service,
		opts:        opts,
		session:     uuid.NewString(),
		input:       ti,
		viewport:    viewport.New(0, 0),
		spinner:     sp,
		showSources: true,
		status:      welcome,
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		// header, stats, input line, status, help, plus the frames of both boxes
		fw, fh := boxStyle.GetFrameSize()
		reserved := 5 + 2*fh
		m.viewport.Width = max(20, msg.Width-fw)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.refresh()
		return m, nil

	case answerMsg:
		if msg.round != m.round {
			return m, nil
		}
		m.pending = false
		m.messages = append(m.messages, Message{
			Role:    RoleAssistant,
			Content: msg.result.Answer,
			Sources: msg.result.Sources,
		})
		m.status = fmt.Sprintf("%d source(s)", len(msg.result.Sources))
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyTab:
			if m.input.Value() == "" || isExample(m.input.Value()) {
				m.input.SetValue(Examples[m.example%len(Examples)])
				m.input.CursorEnd()
				m.example++
			}
			return m, nil
		case tea.KeyCtrlO:
			m.showSources = !m.showSources
			m.refresh()
			return m, nil
		case tea.KeyCtrlT:
			m.showMetrics = !m.showMetrics
			m.refresh()
			return m, nil
		case tea.KeyCtrlL:
			m.messages = nil
			m.queryCount = 0
			m.pending = false
			m.round++
			m.status = welcome
			m.refresh()
			return m, nil
		case tea.KeyCtrlS:
			m.status = m.save()
			return m, nil
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if q == "" || m.pending {
		return m, nil
	}
	m.input.Reset()
	m.messages = append(m.messages, Message{Role: RoleUser, Content: q})
	m.queryCount++
	m.pending = true
	m.status = "🔍 Recherche en cours..."
	m.refresh()

	ctx, service, round := m.ctx, m.service, m.round
	ask := func() tea.Msg {
		return answerMsg{round: round, result: service.Ask(ctx, q)}
	}
	return m, tea.Batch(ask, m.spinner.Tick)
}

func (m Model) save() string {
	if len(m.messages) == 0 {
		return "Rien à sauvegarder"
	}
	path, err := Export(m.opts.ExportDir, m.transcript(), m.opts.Now())
	if err != nil {
		return "❌ " + err.Error()
	}
	return "✅ Sauvegardé: " + path
}

func (m Model) transcript() Transcript {
	return Transcript{
		Session:    m.session,
		QueryCount: m.queryCount,
		Messages:   append([]Message(nil), m.messages...),
	}
}

// View renders the header, conversation, input and status line.
func (m Model) View() string {
	if !m.ready {
		return "Chargement..."
	}
	title := "CHATBOT RAG"
	sub := "Sites archéologiques de Tunisie • RAG"
	if m.opts.Model != "" {
		sub += " + " + m.opts.Model
	}
	header := headerStyle.Render(title) + "  " + subStyle.Render(sub)
	stats := subStyle.Render(fmt.Sprintf("📊 Questions: %d • Échanges: %d", m.queryCount, len(m.messages)/2))

	status := m.status
	if m.pending {
		status = m.spinner.View() + " " + status
	}
	return strings.Join([]string{
		header,
		stats,
		boxStyle.Render(m.viewport.View()),
		boxStyle.Render(m.input.View()),
		statusStyle.Render(status),
		subStyle.Render(helpLine),
	}, "\n")
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	if len(m.messages) == 0 {
		return welcome
	}
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Role == RoleUser {
			b.WriteString(userStyle.Render("Vous: ") + msg.Content)
			continue
		}
		b.WriteString(assistantStyle.Render("Assistant: ") + msg.Content)
		if m.showSources {
			b.WriteString("\n\n" + sectionStyle.Render("📚 Sources") + "\n")
			if len(msg.Sources) == 0 {
				b.WriteString(noSources)
			}
			for _, src := range msg.Sources {
				b.WriteString(Card(src, m.opts.Summarizer, m.opts.MaxSentences, m.width) + "\n")
			}
		}
		if m.showMetrics && len(msg.Sources) > 0 {
			b.WriteString("\n" + sectionStyle.Render("📊 Métriques") + "\n" + Metrics(msg.Sources))
		}
	}
	return b.String()
}

func isExample(s string) bool {
	for _, e := range Examples {
		if e == s {
			return true
		}
	}
	return false
}

var (
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6366f1"))
	subStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)
