package tui

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage-rag/internal/domain"
	"heritage-rag/internal/summarizer"
)

type stubAsker struct {
	questions []string
	result    domain.QueryResult
}

func (s *stubAsker) Ask(_ context.Context, q string) domain.QueryResult {
	s.questions = append(s.questions, q)
	r := s.result
	r.Question = q
	return r
}

func dougga() domain.RetrievalResult {
	return domain.RetrievalResult{
		Text:       "Le théâtre de Dougga fut construit en 168. Il accueillait 3500 spectateurs.",
		Similarity: 0.82,
		Metadata: domain.Metadata{
			Site:     domain.Str("Dougga"),
			Period:   domain.Str("Romaine"),
			Filename: "dougga.txt",
		},
	}
}

var fixedNow = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local) }

func newModel(t *testing.T, a Asker) Model {
	t.Helper()
	m := New(context.Background(), a, Options{
		Model:      "llama3",
		ExportDir:  t.TempDir(),
		Summarizer: summarizer.NewFrequencySummarizer(),
		Now:        fixedNow,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

// drain runs cmd and feeds any answer back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
	case answerMsg:
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func ask(t *testing.T, m Model, q string) Model {
	t.Helper()
	m.input.SetValue(q)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.True(t, m.pending)
	return drain(t, m, cmd)
}

func key(m Model, k tea.KeyType) Model {
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(Model)
}

func TestBadge(t *testing.T) {
	assert.Contains(t, Badge(0.82), "Très pertinent • 82%")
	assert.Contains(t, Badge(0.70), "Très pertinent • 70%")
	assert.Contains(t, Badge(0.55), "Pertinent • 55%")
	assert.Contains(t, Badge(0.40), "Peu pertinent • 40%")
}

func TestCard(t *testing.T) {
	card := Card(dougga(), summarizer.NewFrequencySummarizer(), 1, 80)
	assert.Contains(t, card, "dougga.txt")
	assert.Contains(t, card, "Site: Dougga")
	assert.Contains(t, card, "Période: Romaine")
	assert.Contains(t, card, "Référence: N/A")
	assert.Contains(t, card, "Très pertinent")

	bare := Card(domain.RetrievalResult{Similarity: 0.1}, nil, 0, 0)
	assert.Contains(t, bare, "Document")
	assert.Contains(t, bare, "Site: N/A")
}

func TestMetrics(t *testing.T) {
	got := Metrics([]domain.RetrievalResult{{Similarity: 0.8}, {Similarity: 0.6}})
	assert.Equal(t, "📄 Sources: 2   📊 Moyenne: 70%   ⭐ Maximum: 80%", got)
}

func TestAskFlow(t *testing.T) {
	a := &stubAsker{result: domain.QueryResult{
		Answer:     "Le théâtre date de 168.",
		Sources:    []domain.RetrievalResult{dougga()},
		HasSources: true,
	}}
	m := ask(t, newModel(t, a), "  Le théâtre de Dougga ?  ")

	assert.Equal(t, []string{"Le théâtre de Dougga ?"}, a.questions)
	assert.False(t, m.pending)
	assert.Equal(t, 1, m.queryCount)
	require.Len(t, m.messages, 2)
	assert.Equal(t, RoleUser, m.messages[0].Role)
	assert.Equal(t, RoleAssistant, m.messages[1].Role)
	assert.Equal(t, "Le théâtre date de 168.", m.messages[1].Content)
	assert.Empty(t, m.input.Value())

	view := m.renderConversation()
	assert.Contains(t, view, "📚 Sources")
	assert.Contains(t, view, "dougga.txt")
	assert.NotContains(t, view, "Métriques")

	m = key(m, tea.KeyCtrlT)
	assert.Contains(t, m.renderConversation(), "📊 Métriques")
	m = key(m, tea.KeyCtrlO)
	assert.NotContains(t, m.renderConversation(), "📚 Sources")
	assert.Contains(t, m.View(), "Questions: 1 • Échanges: 1")
}

func TestEmptyInputIgnored(t *testing.T) {
	a := &stubAsker{}
	m := newModel(t, a)
	m.input.SetValue("   ")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, next.(Model).messages)
	assert.Empty(t, a.questions)
}

func TestNoSourcesNotice(t *testing.T) {
	a := &stubAsker{result: domain.QueryResult{Answer: "Bonjour !", Sources: []domain.RetrievalResult{}}}
	m := ask(t, newModel(t, a), "bonjour")
	assert.Contains(t, m.renderConversation(), noSources)
}

func TestTabCyclesExamples(t *testing.T) {
	m := newModel(t, &stubAsker{})
	m = key(m, tea.KeyTab)
	assert.Equal(t, Examples[0], m.input.Value())
	m = key(m, tea.KeyTab)
	assert.Equal(t, Examples[1], m.input.Value())

	m.input.SetValue("ma question")
	m = key(m, tea.KeyTab)
	assert.Equal(t, "ma question", m.input.Value())
}

func TestClear(t *testing.T) {
	m := ask(t, newModel(t, &stubAsker{result: domain.QueryResult{Answer: "ok"}}), "Carthage")
	m = key(m, tea.KeyCtrlL)
	assert.Empty(t, m.messages)
	assert.Zero(t, m.queryCount)
}

func TestClear_DropsPendingAnswer(t *testing.T) {
	m := newModel(t, &stubAsker{result: domain.QueryResult{Answer: "tardive"}})
	m.input.SetValue("Parle-moi de Kerkouane")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.True(t, m.pending)

	m = key(m, tea.KeyCtrlL)
	assert.False(t, m.pending)
	m = drain(t, m, cmd)
	assert.Empty(t, m.messages)
	assert.Zero(t, m.queryCount)

	m = ask(t, m, "Parle-moi de Dougga")
	require.Len(t, m.messages, 2)
	assert.Equal(t, RoleUser, m.messages[0].Role)
	assert.Equal(t, "tardive", m.messages[1].Content)
}

func TestSave(t *testing.T) {
	m := newModel(t, &stubAsker{result: domain.QueryResult{Answer: "Carthage fut fondée en 814 av. J.-C."}})

	m = key(m, tea.KeyCtrlS)
	assert.Equal(t, "Rien à sauvegarder", m.status)

	m = ask(t, m, "Parle-moi de Carthage")
	m = key(m, tea.KeyCtrlS)
	want := filepath.Join(m.opts.ExportDir, "conversation_20250314_092653.json")
	assert.Equal(t, "✅ Sauvegardé: "+want, m.status)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	var got Transcript
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "20250314_092653", got.Timestamp)
	assert.Equal(t, 1, got.QueryCount)
	assert.Equal(t, m.session, got.Session)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Parle-moi de Carthage", got.Messages[0].Content)
	assert.True(t, strings.Contains(string(data), "fondée"), "non-ASCII text is written verbatim")
}

func TestExport_EmptyMessagesIsArray(t *testing.T) {
	path, err := Export(t.TempDir(), Transcript{Session: "s"}, fixedNow())
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"messages": []`)
}
