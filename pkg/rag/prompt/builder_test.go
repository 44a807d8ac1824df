package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	out := NewBuilder("  Quantas horas?  ", "São 300 horas.\n\n<b>Lei 11.788</b>", "técnico em química").Build()

	assert.Contains(t, out, "Curso do estudante: técnico em química")
	assert.Contains(t, out, "Contexto:\nSão 300 horas.\n\n<b>Lei 11.788</b>\n")
	assert.Contains(t, out, "Pergunta:\nQuantas horas?\n")
	assert.True(t, strings.HasSuffix(out, "Resposta:\n"))
	assert.NotContains(t, out, "{{")
}

func TestBuildWithoutCourse(t *testing.T) {
	out := NewBuilder("q", "ctx", "").Build()
	assert.Contains(t, out, "Curso do estudante: "+UnknownCourse)
}

func TestBuildDoesNotExpandPlaceholdersInContext(t *testing.T) {
	out := NewBuilder("q", "literal {{question}} in a passage", "x").Build()
	assert.Contains(t, out, "literal {{question}} in a passage")
}

func TestSystemPromptRules(t *testing.T) {
	assert.Contains(t, SystemPromptV1, "Nunca invente")
	assert.Contains(t, SystemPromptV1, "preserve-as literalmente")
	assert.Contains(t, SystemPromptV1, "Coordenação de Estágio")
}
