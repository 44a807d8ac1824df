package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFAQ = `PERGUNTAS FREQUENTES
1. Qual a carga horária do estágio no Curso Técnico em Química?
O estágio obrigatório do curso técnico em química tem 300 horas.
2. Ok.
3. Quem assina o termo de compromisso?
O termo é assinado pelo estudante, pela empresa e pela Coordenação de Estágio.`

func TestSplitFAQ(t *testing.T) {
	blocks := SplitFAQ(sampleFAQ)
	require.Len(t, blocks, 2, "header and short sections are dropped")

	assert.Equal(t, "1. Qual a carga horária do estágio no Curso Técnico em Química?", blocks[0].SearchKey)
	assert.Equal(t, "Técnico em Química?", blocks[0].Course)
	assert.Equal(t, "tecnico_em_quimica?", blocks[0].CourseKey)
	assert.Contains(t, blocks[0].Text, "300 horas")

	assert.Equal(t, "", blocks[1].Course)
	assert.Equal(t, "geral", blocks[1].CourseKey)
	assert.Equal(t, "3. Quem assina o termo de compromisso?", blocks[1].SearchKey)
}

func TestExtractCourse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"11. CURSO TÉCNICO EM ALIMENTOS\nTexto", "TÉCNICO EM ALIMENTOS"},
		{"Para os cursos superiores de tecnologia", "superiores de tecnologia"},
		{"Alunos do curso superior de Nutrição devem", "superior de Nutrição devem"},
		{"Cursos de Licenciatura em Química", "de Licenciatura em Química"},
		{"Sem menção a programa", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCourse(tt.in))
		})
	}
}
