package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier()
	tests := []struct {
		question string
		want     Scope
	}{
		{"bonjour", Greeting},
		{"  Hello  ", Greeting},
		{"bonjour, parle-moi de Carthage", Greeting},
		{"salut les amis", Greeting},
		{"Good morning", Greeting},
		{"good evening, Dougga?", Greeting},
		{"j'aime carthage", InDomain},
		{"Parle-moi de Carthage", InDomain},
		{"bonjourcarthage", InDomain},
		{"hiérarchie des thermes", InDomain},
		{"Où se trouve Kerkuane ?", InDomain},
		{"kerkouan punic town", InDomain},
		{"L'amphithéâtre d'El Jem", InDomain},
		{"quelle est la recette du couscous", OutOfDomain},
		{"what is the weather today", OutOfDomain},
		{"youpi", OutOfDomain},
		{"", OutOfDomain},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.question))
		})
	}
}

func TestClassify_GreetingPrecedesKeywords(t *testing.T) {
	assert.Equal(t, Greeting, NewClassifier().Classify("bonjour carthage"))
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "greeting", Greeting.String())
	assert.Equal(t, "in-domain", InDomain.String())
	assert.Equal(t, "out-of-domain", OutOfDomain.String())
}
