// Package prompt builds the grounded generation prompt from retrieved chunks.
package prompt

import (
	"strconv"
	"strings"

	"heritage-rag/internal/domain"
)

// Placeholders for metadata that could not be determined.
const (
	UnknownSite   = "Site inconnu"
	UnknownPeriod = "Période inconnue"
	UnknownSource = "Source inconnue"
	UnknownFile   = "Document"
)

const header = `Tu es un expert en archéologie tunisienne. Ta mission est de fournir des réponses factuelles, précises et bien sourcées.

DOCUMENTS DE RÉFÉRENCE:
`

const instructions = `

INSTRUCTIONS STRICTES:
1. Réponds en français, de manière claire et structurée.
2. Utilise UNIQUEMENT les informations présentes dans les documents de référence.
3. N'invente rien. Si une information n'est pas dans les documents, dis-le explicitement.
4. À la fin de ta réponse, liste les sources utilisées sous ce format exact:

Sources:
- [Titre du document] (Site: [site], Période: [période], Source: [source])

RÉPONSE:`

var delimiter = strings.Repeat("=", 50)

// Assemble renders the question and its context blocks into one prompt.
// Blocks appear in the order of results.
func Assemble(question string, results []domain.RetrievalResult) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(Context(results))
	b.WriteString("\n\nQUESTION DE L'UTILISATEUR: ")
	b.WriteString(question)
	b.WriteString(instructions)
	return b.String()
}

// Context renders one labelled block per result.
func Context(results []domain.RetrievalResult) string {
	lines := make([]string, 0, len(results)*9)
	for i, r := range results {
		filename := r.Metadata.Filename
		if filename == "" {
			filename = UnknownFile
		}
		lines = append(lines,
			"[SOURCE "+strconv.Itoa(i+1)+"]",
			"Site: "+domain.Value(r.Metadata.Site, UnknownSite),
			"Période: "+domain.Value(r.Metadata.Period, UnknownPeriod),
			"Source: "+domain.Value(r.Metadata.Source, UnknownSource),
			"Document: "+filename,
			"Pertinence: "+strconv.FormatFloat(r.Similarity, 'f', -1, 64),
			"---",
			r.Text,
			delimiter,
		)
	}
	return strings.Join(lines, "\n")
}
