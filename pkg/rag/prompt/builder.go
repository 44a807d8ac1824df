// Package prompt holds the versioned instruction templates of the answer
// synthesizer and assembles the final user prompt.
package prompt

import (
	"strings"
)

// Version identifies the template set below. Bump it whenever wording changes.
const Version = "v1"

// SystemPromptV1 is sent in the system role.
const SystemPromptV1 = `Você é o JOTHA, assistente virtual da Coordenação de Estágio do IF Sudeste MG - Campus Barbacena.
Você responde em português, com gentileza, clareza e precisão.
Regras:
- Responda somente com base no contexto fornecido. Nunca invente informações.
- Se o contexto contiver marcações (HTML, markdown, tabelas), preserve-as literalmente.
- Se o contexto não responder à pergunta, diga que não encontrou a informação e oriente o estudante a procurar a Coordenação de Estágio ou o site do campus.`

// AnswerTemplateV1 frames the retrieved context and the question.
// Placeholders: {{course}}, {{context}}, {{question}}.
const AnswerTemplateV1 = `Curso do estudante: {{course}}

Contexto:
{{context}}

Pergunta:
{{question}}

Resposta:`

// UnknownCourse is shown when the student has not declared a course.
const UnknownCourse = "não informado"

// Builder renders AnswerTemplateV1.
type Builder struct {
	question string
	context  string
	course   string
}

func NewBuilder(question, context, courseLabel string) *Builder {
	return &Builder{question: question, context: context, course: courseLabel}
}

// Build returns the user prompt.
func (b *Builder) Build() string {
	course := strings.TrimSpace(b.course)
	if course == "" {
		course = UnknownCourse
	}

	r := strings.NewReplacer(
		"{{course}}", course,
		"{{context}}", b.context,
		"{{question}}", strings.TrimSpace(b.question),
	)

	var prompt strings.Builder
	prompt.WriteString("\n")
	prompt.WriteString(r.Replace(AnswerTemplateV1))
	prompt.WriteString("\n")
	return prompt.String()
}
