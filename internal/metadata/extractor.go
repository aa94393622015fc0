// Package metadata derives site, period and source attribution for corpus
// documents. Each field is resolved by an ordered list of independent
// resolvers; the first one returning a value wins.
package metadata

import (
	"regexp"
	"strings"

	"heritage-rag/internal/domain"
)

// Resolver returns a value for one metadata field, or nil when it has nothing to say.
type Resolver func(content, filename string) *string

// Extractor resolves document metadata through per-field cascades.
type Extractor struct {
	site   []Resolver
	period []Resolver
	source []Resolver
}

// New returns an extractor with the default cascades.
func New() *Extractor {
	return &Extractor{
		site: []Resolver{
			labelResolver(`Site`, `Nom`, `Lieu`),
			filenameResolver(siteNames),
		},
		period: []Resolver{
			labelResolver(`P[ée]riode`, `[ÉéE]poque`, `Datation`),
			keywordResolver(eras),
		},
		source: []Resolver{
			labelResolver(`Source`, `R[ée]f[ée]rence`),
			urlResolver,
			filenameResolver(sourceNames),
		},
	}
}

// Extract resolves site, period and source for a document. It never fails;
// undeterminable fields are left nil.
func (e *Extractor) Extract(content, filename string) domain.Metadata {
	return domain.Metadata{
		Site:     resolve(e.site, content, filename),
		Period:   resolve(e.period, content, filename),
		Source:   resolve(e.source, content, filename),
		Filename: filename,
	}
}

func resolve(chain []Resolver, content, filename string) *string {
	for _, r := range chain {
		if v := r(content, filename); v != nil {
			return v
		}
	}
	return nil
}

// labelResolver matches "Label: value" or "Label - value" at the start of a
// line, trying labels in the given order. The first label found decides,
// so a blank value hands over to the next resolver.
func labelResolver(labels ...string) Resolver {
	patterns := make([]*regexp.Regexp, len(labels))
	for i, l := range labels {
		patterns[i] = regexp.MustCompile(`(?im)^[ \t]*` + l + `[ \t]*[:\-][ \t]*(.+)$`)
	}
	return func(content, _ string) *string {
		for _, p := range patterns {
			m := p.FindStringSubmatch(content)
			if m == nil {
				continue
			}
			if v := strings.TrimSpace(m[1]); v != "" {
				return domain.Str(v)
			}
			return nil
		}
		return nil
	}
}

// cue maps a lowercase substring to a canonical value.
type cue struct {
	key   string
	value string
}

var siteNames = []cue{
	{"carthage", "Carthage"},
	{"dougga", "Dougga"},
	{"el_jem", "El Jem"},
	{"eljem", "El Jem"},
	{"el jem", "El Jem"},
	{"sbeitla", "Sbeitla"},
	{"sbeïtla", "Sbeïtla"},
	{"kerkouane", "Kerkouane"},
	{"kerk", "Kerkouane"},
	{"bulla", "Bulla Regia"},
	{"uthina", "Uthina"},
	{"maktar", "Maktar"},
	{"thuburbo", "Thuburbo Majus"},
	{"chemtou", "Chemtou"},
}

var sourceNames = []cue{
	{"wiki", "Wikipédia"},
	{"unesco", "UNESCO"},
	{"inp", "Institut National du Patrimoine (INP)"},
}

func filenameResolver(table []cue) Resolver {
	return func(_, filename string) *string {
		name := strings.ToLower(filename)
		for _, c := range table {
			if strings.Contains(name, c.key) {
				return domain.Str(c.value)
			}
		}
		return nil
	}
}

// era lists the indicator terms for one historical period.
type era struct {
	keywords []string
	label    string
}

var eras = []era{
	{[]string{"romain", "rome"}, "Époque romaine"},
	{[]string{"punique", "carthaginois"}, "Époque punique"},
	{[]string{"byzantin"}, "Époque byzantine"},
	{[]string{"numide"}, "Époque numide"},
}

func keywordResolver(table []era) Resolver {
	return func(content, _ string) *string {
		lower := strings.ToLower(content)
		for _, e := range table {
			for _, k := range e.keywords {
				if strings.Contains(lower, k) {
					return domain.Str(e.label)
				}
			}
		}
		return nil
	}
}

var urlRe = regexp.MustCompile(`https?://\S+`)

func urlResolver(content, _ string) *string {
	if u := urlRe.FindString(content); u != "" {
		return domain.Str(u)
	}
	return nil
}
