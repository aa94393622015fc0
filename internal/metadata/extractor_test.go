package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Labels(t *testing.T) {
	content := "Titre: Le théâtre\nSite: Dougga\nPériode : IIe siècle\nSource - INP Tunis\n\nTexte romain."
	meta := New().Extract(content, "doc_001.txt")

	require.NotNil(t, meta.Site)
	require.NotNil(t, meta.Period)
	require.NotNil(t, meta.Source)
	assert.Equal(t, "Dougga", *meta.Site)
	assert.Equal(t, "IIe siècle", *meta.Period)
	assert.Equal(t, "INP Tunis", *meta.Source)
	assert.Equal(t, "doc_001.txt", meta.Filename)
}

func TestExtract_LabelsAreCaseInsensitiveAndIndented(t *testing.T) {
	content := "   SITE:   Carthage  \r\n  époque- Punique\n"
	meta := New().Extract(content, "x.txt")

	require.NotNil(t, meta.Site)
	require.NotNil(t, meta.Period)
	assert.Equal(t, "Carthage", *meta.Site)
	assert.Equal(t, "Punique", *meta.Period)
}

func TestExtract_LabelPriority(t *testing.T) {
	// "Site" outranks "Nom" even when "Nom" comes first in the text.
	content := "Nom: Thugga\nSite: Dougga\n"
	meta := New().Extract(content, "x.txt")
	require.NotNil(t, meta.Site)
	assert.Equal(t, "Dougga", *meta.Site)

	meta = New().Extract("Lieu: Le Kef\n", "x.txt")
	require.NotNil(t, meta.Site)
	assert.Equal(t, "Le Kef", *meta.Site)
}

func TestExtract_BlankLabelFallsBackToFilename(t *testing.T) {
	// a blank "Site:" line stops the label search before "Nom" is tried
	meta := New().Extract("Site:  \nNom: Thugga\n", "dougga_wiki.txt")
	require.NotNil(t, meta.Site)
	assert.Equal(t, "Dougga", *meta.Site)
}

func TestExtract_LabelMustStartLine(t *testing.T) {
	meta := New().Extract("Ce site: inconnu", "notes.txt")
	assert.Nil(t, meta.Site)
}

func TestExtract_SiteFromFilename(t *testing.T) {
	tests := map[string]string{
		"bulla_regia_wiki.txt":  "Bulla Regia",
		"EL_JEM_amphi.txt":      "El Jem",
		"kerkuane-notes.txt":    "Kerkouane",
		"thuburbo_majus.txt":    "Thuburbo Majus",
		"carthage_dougga.txt":   "Carthage",
		"Sbeïtla_forum.txt":     "Sbeïtla",
		"sbeitla.txt":           "Sbeitla",
	}
	e := New()
	for filename, want := range tests {
		meta := e.Extract("Texte sans étiquette.", filename)
		require.NotNil(t, meta.Site, filename)
		assert.Equal(t, want, *meta.Site, filename)
	}

	assert.Nil(t, e.Extract("Texte.", "kairouan.txt").Site)
}

func TestExtract_PeriodFromKeywords(t *testing.T) {
	e := New()
	tests := []struct {
		content string
		want    string
	}{
		{"Une ville ROMAINE et punique.", "Époque romaine"},
		{"Sous la domination de Rome.", "Époque romaine"},
		{"Un port carthaginois byzantin.", "Époque punique"},
		{"Une forteresse byzantine.", "Époque byzantine"},
		{"Un mausolée numide.", "Époque numide"},
	}
	for _, tt := range tests {
		meta := e.Extract(tt.content, "x.txt")
		require.NotNil(t, meta.Period, tt.content)
		assert.Equal(t, tt.want, *meta.Period, tt.content)
	}

	assert.Nil(t, e.Extract("Un texte sans indice.", "x.txt").Period)
}

func TestExtract_SourceCascade(t *testing.T) {
	e := New()

	meta := e.Extract("Référence: Atlas archéologique\nhttps://example.org/a", "wiki.txt")
	require.NotNil(t, meta.Source)
	assert.Equal(t, "Atlas archéologique", *meta.Source)

	meta = e.Extract("Voir https://fr.wikipedia.org/wiki/Dougga pour plus.", "unesco.txt")
	require.NotNil(t, meta.Source)
	assert.Equal(t, "https://fr.wikipedia.org/wiki/Dougga", *meta.Source)

	meta = e.Extract("Pas de lien.", "dougga_unesco.txt")
	require.NotNil(t, meta.Source)
	assert.Equal(t, "UNESCO", *meta.Source)

	meta = e.Extract("Pas de lien.", "wiki_inp.txt")
	require.NotNil(t, meta.Source)
	assert.Equal(t, "Wikipédia", *meta.Source)

	meta = e.Extract("Pas de lien.", "rapport_inp.txt")
	require.NotNil(t, meta.Source)
	assert.Equal(t, "Institut National du Patrimoine (INP)", *meta.Source)

	assert.Nil(t, e.Extract("Pas de lien.", "notes.txt").Source)
}

func TestExtract_NothingDeterminable(t *testing.T) {
	meta := New().Extract("", "")
	assert.Nil(t, meta.Site)
	assert.Nil(t, meta.Period)
	assert.Nil(t, meta.Source)
}
