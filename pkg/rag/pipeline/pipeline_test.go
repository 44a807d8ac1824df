package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jotha-be/internal/pkg/logger"
	"jotha-be/pkg/rag"
	"jotha-be/pkg/rag/faq"
	"jotha-be/pkg/rag/history"
	"jotha-be/pkg/rag/index"
	"jotha-be/pkg/rag/ragtest"
	"jotha-be/pkg/rag/recorder"
	"jotha-be/pkg/rag/response"
	"jotha-be/pkg/rag/retrieval"
	"jotha-be/pkg/store"
)

type fixture struct {
	faq, legal, planos *ragtest.Index
	model              *ragtest.LLM
}

func (f *fixture) pipeline() *Pipeline {
	var loaded []index.Index
	for _, i := range []*ragtest.Index{f.faq, f.legal, f.planos} {
		if i != nil {
			loaded = append(loaded, i)
		}
	}
	reg := index.NewRegistry(loaded...)
	log := logger.NewNopLogger()

	var faqIndex index.Index
	if f.faq != nil {
		faqIndex = f.faq
	}

	return New(Deps{
		Registry:    reg,
		Resolver:    faq.NewResolver(faqIndex, faq.DefaultConfig(), log),
		Merger:      retrieval.NewMerger(reg, retrieval.DefaultConfig(), log),
		Window:      history.NewWindow(6),
		Synthesizer: response.NewSynthesizer(f.model, response.DefaultConfig(), log),
		Logger:      log,
	})
}

func faqDoc(content, courseKey, searchKey string) store.Document {
	d := ragtest.Doc(store.CorpusFAQ, content, courseKey)
	if searchKey != "" {
		d.Metadata[store.MetaSearchKey] = searchKey
	}
	return d
}

func chatty(n int) *store.Session {
	s := &store.Session{ID: "s", Course: "informatica", CourseLabel: "Informática"}
	for i := 0; i < n; i++ {
		speaker := store.SpeakerUser
		if i%2 == 1 {
			speaker = store.SpeakerAssistant
		}
		s.Append(speaker, fmt.Sprintf("turno %d", i), time.Now())
	}
	return s
}

func TestAnswerFAQScenario(t *testing.T) {
	question := "Quantas horas são necessárias no estágio obrigatório?"
	f := &fixture{
		faq: &ragtest.Index{IndexName: index.NameFAQ, Docs: []store.Document{
			faqDoc("12. São necessárias 300 horas...", "informática", ""),
		}},
		model: &ragtest.LLM{Reply: "não deveria ser chamado"},
	}
	p := f.pipeline()

	for _, session := range []*store.Session{chatty(0), chatty(9)} {
		ans, err := p.Answer(context.Background(), question, session)
		require.NoError(t, err)
		assert.Equal(t, "São necessárias 300 horas...", ans.Text, "exact match ignores history")
		assert.True(t, ans.Grounded)
		assert.Equal(t, OutcomeFAQ, ans.Outcome)
		require.Len(t, ans.Passages, 1)
	}
	assert.Zero(t, f.model.Calls(), "exact match never calls the model")
}

func TestAnswerFAQByScore(t *testing.T) {
	question := "O seguro é obrigatório?"
	f := &fixture{
		faq: &ragtest.Index{
			IndexName: index.NameFAQ,
			Docs:      []store.Document{faqDoc("8. Sim, o seguro é <b>obrigatório</b>.\nmetadado: fonte faq", "informatica", "seguro obrigatório")},
			Vectors:   map[string][]float32{question: {1, 0}, "seguro obrigatório": {0.92, 0.39}},
		},
		model: &ragtest.LLM{},
	}

	ans, err := f.pipeline().Answer(context.Background(), question, chatty(0))
	require.NoError(t, err)
	assert.Equal(t, "Sim, o seguro é <b>obrigatório</b>.", ans.Text)
	assert.Equal(t, OutcomeFAQ, ans.Outcome)
}

func TestAnswerSynthesized(t *testing.T) {
	question := "Posso fazer estágio no exterior?"
	f := &fixture{
		faq: &ragtest.Index{
			IndexName: index.NameFAQ,
			Docs:      []store.Document{faqDoc("3. Convênios com empresas.", store.CourseGeneral, "convênio")},
			Vectors:   map[string][]float32{question: {1, 0}, "convênio": {0, 1}},
		},
		legal: &ragtest.Index{IndexName: index.NameLegal, Docs: []store.Document{
			ragtest.Doc(store.CorpusLegal, "Art. 1 Lei 11.788", ""),
		}},
		planos: &ragtest.Index{IndexName: index.NameCurriculum, IgnoreFilter: true, Docs: []store.Document{
			ragtest.Doc(store.CorpusCurriculum, "PPC agropecuária", "agropecuaria"),
			ragtest.Doc(store.CorpusCurriculum, "PPC informática", "tecnico_em_informatica"),
		}},
		model: &ragtest.LLM{Reply: "Sim, desde que haja convênio."},
	}

	ans, err := f.pipeline().Answer(context.Background(), question, chatty(10))
	require.NoError(t, err)
	assert.Equal(t, "Sim, desde que haja convênio.", ans.Text)
	assert.True(t, ans.Grounded)
	assert.Equal(t, OutcomeSynthesized, ans.Outcome)

	var contents []string
	for _, d := range ans.Passages {
		contents = append(contents, d.Content)
	}
	assert.Equal(t, []string{"3. Convênios com empresas.", "Art. 1 Lei 11.788", "PPC informática"}, contents)

	require.Equal(t, 1, f.model.Calls())
	msgs := f.model.Messages[0]
	assert.Len(t, msgs, 1+6+1, "system prompt, six recent turns, question")
	assert.Equal(t, "turno 4", msgs[1].Content)
	assert.Contains(t, msgs[len(msgs)-1].Content, "Curso do estudante: Informática")
	assert.NotContains(t, msgs[len(msgs)-1].Content, "PPC agropecuária")
}

func TestAnswerNotFoundRecordsOnce(t *testing.T) {
	question := "Qual a cor do uniforme?"
	f := &fixture{
		faq:    &ragtest.Index{IndexName: index.NameFAQ},
		legal:  &ragtest.Index{IndexName: index.NameLegal},
		planos: &ragtest.Index{IndexName: index.NameCurriculum},
		model:  &ragtest.LLM{Reply: "x"},
	}
	p := f.pipeline()
	csv := recorder.NewCSVStore(filepath.Join(t.TempDir(), "nao_respondido.csv"))
	rec := recorder.NewRecorder(csv, nil, logger.NewNopLogger())

	for i := 0; i < 2; i++ {
		ans, err := p.Answer(context.Background(), question, &store.Session{ID: "anon"})
		assert.ErrorIs(t, err, rag.ErrNoGroundedAnswer)
		assert.Equal(t, response.NotFoundMessage, ans.Text)
		assert.False(t, ans.Grounded)
		if !ans.Grounded {
			require.NoError(t, rec.Record(context.Background(), question))
		}

		rows, err := csv.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	}
	assert.Zero(t, f.model.Calls())
}

func TestAnswerIndexesMissing(t *testing.T) {
	f := &fixture{model: &ragtest.LLM{}}
	ans, err := f.pipeline().Answer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, rag.ErrIndexUnavailable)
	assert.Equal(t, response.IndexesMissingMessage, ans.Text)
	assert.Equal(t, OutcomeIndexesMissing, ans.Outcome)
	assert.False(t, ans.Grounded)
}

func TestAnswerDegradesWithOneSource(t *testing.T) {
	f := &fixture{
		legal: &ragtest.Index{IndexName: index.NameLegal, Docs: []store.Document{
			ragtest.Doc(store.CorpusLegal, "Art. 10 jornada de 6 horas", ""),
		}},
		model: &ragtest.LLM{Reply: "A jornada é de até 6 horas diárias."},
	}

	ans, err := f.pipeline().Answer(context.Background(), "Qual a jornada máxima?", chatty(0))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSynthesized, ans.Outcome)
}

func TestAnswerSynthesisUnavailable(t *testing.T) {
	f := &fixture{
		legal: &ragtest.Index{IndexName: index.NameLegal, Docs: []store.Document{ragtest.Doc(store.CorpusLegal, "lei", "")}},
		model: &ragtest.LLM{Err: errors.New("503 service unavailable")},
	}

	ans, err := f.pipeline().Answer(context.Background(), "q", chatty(0))
	assert.ErrorIs(t, err, rag.ErrSynthesisUnavailable)
	assert.Equal(t, response.UnavailableMessage, ans.Text)
	assert.Equal(t, OutcomeUnavailable, ans.Outcome)
	assert.False(t, ans.Grounded)
}

func TestAnswerTimeout(t *testing.T) {
	f := &fixture{
		legal: &ragtest.Index{IndexName: index.NameLegal, Block: true},
		model: &ragtest.LLM{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ans, err := f.pipeline().Answer(ctx, "q", chatty(0))
	assert.ErrorIs(t, err, rag.ErrSynthesisUnavailable)
	assert.Equal(t, OutcomeUnavailable, ans.Outcome)
}
