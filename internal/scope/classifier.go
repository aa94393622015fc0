// Package scope decides whether a question should reach retrieval at all.
package scope

import (
	"regexp"
	"strings"
)

// Scope is the classification of an incoming question.
type Scope int

const (
	OutOfDomain Scope = iota
	Greeting
	InDomain
)

func (s Scope) String() string {
	switch s {
	case Greeting:
		return "greeting"
	case InDomain:
		return "in-domain"
	default:
		return "out-of-domain"
	}
}

var greetings = []string{
	"hi", "hello", "salut", "bonjour", "bonsoir",
	"hey", "coucou", "yo", "good morning", "good evening",
}

var keywords = []string{
	"tunisie", "tunisien", "tunisienne",
	"site archéologique", "sites archéologiques",
	"archéologie", "patrimoine", "ruines", "antique",
	"romain", "punique", "numide", "byzantin",
	"amphithéâtre", "théâtre", "forum", "thermes", "temple",
	"mosaïque", "basilique", "capitole",
	"carthage", "dougga", "el jem", "el djem",
	"sbeitla", "sbeïtla", "kerkouane",
	"bulla regia", "uthina", "maktar", "thuburbo",
	"chemtou", "oudhna",
}

// kerkRe tolerates the many spellings of Kerkouane.
var kerkRe = regexp.MustCompile(`\bkerk\w*`)

// Classifier is a stateless membership test over fixed phrase lists.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

// Classify checks greetings first, then domain keywords.
func (c *Classifier) Classify(question string) Scope {
	q := strings.ToLower(strings.TrimSpace(question))

	for _, g := range greetings {
		if q == g || strings.HasPrefix(q, g+" ") || strings.HasPrefix(q, g+",") {
			return Greeting
		}
	}

	if kerkRe.MatchString(q) {
		return InDomain
	}
	for _, k := range keywords {
		if strings.Contains(q, k) {
			return InDomain
		}
	}
	return OutOfDomain
}
