package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"jotha-be/internal/dto"
	"jotha-be/internal/pkg/logger"
	"jotha-be/pkg/events"
	"jotha-be/pkg/rag/ragtest"
	"jotha-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFAQPassages(t *testing.T) {
	text := "FAQ\n1. Qual a carga horária no Curso Técnico em Alimentos?\nSão 240 horas de estágio supervisionado obrigatório.\n" +
		"2. Onde entrego o relatório final de estágio?\nNa Coordenação de Estágio, em formulário próprio."

	drafts := FAQPassages(text, "faq.pdf")
	require.Len(t, drafts, 2)
	assert.Equal(t, "tecnico_em_alimentos?", drafts[0].CourseKey)
	assert.Equal(t, "1. Qual a carga horária no Curso Técnico em Alimentos?", drafts[0].SearchKey)
	assert.Equal(t, "geral", drafts[1].CourseKey)
	assert.Equal(t, "faq.pdf", drafts[1].File)
}

func TestDocumentPassages(t *testing.T) {
	text := strings.Repeat("Lei 11.788 dispõe sobre o estágio de estudantes. ", 30)

	legal := DocumentPassages(text, "lei.pdf", "")
	require.Greater(t, len(legal), 1)
	for _, d := range legal {
		assert.Equal(t, "geral", d.CourseKey)
		assert.LessOrEqual(t, len([]rune(d.Content)), 500)
	}

	plano := DocumentPassages("Matriz curricular do curso.", "plano.pdf", "Técnico em Química")
	require.Len(t, plano, 1)
	assert.Equal(t, "tecnico_em_quimica", plano[0].CourseKey)
	assert.Equal(t, "Técnico em Química", plano[0].Course)
}

func newTestConsumer(table *passageTable, embedder *ragtest.Embedder, pub events.Publisher) IIndexConsumerService {
	return NewIndexConsumerService(nil, "INDEX_PASSAGES", table, embedder, pub, logger.NewNopLogger(), nil)
}

func TestIndexReplacesCorpus(t *testing.T) {
	ctx := context.Background()
	table := newPassageTable()
	pub := &fakeEventPublisher{}
	consumer := newTestConsumer(table, &ragtest.Embedder{}, pub)

	n, err := consumer.Index(ctx, dto.IndexCorpusMessage{Corpus: store.CorpusFAQ, Passages: []dto.PassageDraft{
		{Content: "primeira versão", CourseKey: "geral"},
		{Content: "segunda", CourseKey: "quimica", SearchKey: "1. Pergunta?"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = consumer.Index(ctx, dto.IndexCorpusMessage{Corpus: store.CorpusFAQ, Passages: []dto.PassageDraft{
		{Content: "reindexado", SearchKey: "2. Outra?", File: "faq.pdf"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows := table.corpus(store.CorpusFAQ)
	require.Len(t, rows, 1)
	p := rows[0]
	assert.Equal(t, "reindexado", p.Content)
	assert.Equal(t, "geral", p.CourseKey, "an untagged draft is general")
	assert.Equal(t, "2. Outra?", p.SearchKey)
	assert.Equal(t, store.CorpusFAQ, p.Metadata[store.MetaSource])
	assert.Equal(t, "geral", p.Metadata[store.MetaCourse])
	assert.Equal(t, "2. Outra?", p.Metadata[store.MetaSearchKey])
	assert.Equal(t, "faq.pdf", p.Metadata["file"])
	assert.Len(t, p.Embedding, 16)

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.TypeCorpusIndexed, pub.events[1].EventType())
	assert.Equal(t, 1, pub.events[1].Payload()["passages"])
}

func TestIndexFailuresLeaveCorpusUntouched(t *testing.T) {
	ctx := context.Background()
	table := newPassageTable()
	consumer := newTestConsumer(table, &ragtest.Embedder{}, nil)

	_, err := consumer.Index(ctx, dto.IndexCorpusMessage{Corpus: store.CorpusLegal, Passages: []dto.PassageDraft{{Content: "lei"}}})
	require.NoError(t, err)

	failing := newTestConsumer(table, &ragtest.Embedder{Err: errors.New("quota exceeded")}, nil)
	_, err = failing.Index(ctx, dto.IndexCorpusMessage{Corpus: store.CorpusLegal, Passages: []dto.PassageDraft{{Content: "nova lei"}}})
	require.Error(t, err)

	table.createErr = errors.New("insert failed")
	_, err = consumer.Index(ctx, dto.IndexCorpusMessage{Corpus: store.CorpusLegal, Passages: []dto.PassageDraft{{Content: "nova lei"}}})
	require.Error(t, err)

	rows := table.corpus(store.CorpusLegal)
	require.Len(t, rows, 1)
	assert.Equal(t, "lei", rows[0].Content)
	assert.Equal(t, 1, table.commits)

	_, err = consumer.Index(ctx, dto.IndexCorpusMessage{Corpus: "faq_index"})
	assert.Error(t, err, "logical index names are not corpus names")
}

func TestIngestThroughGoChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	reports := make(chan IndexReport, 1)
	table := newPassageTable()
	consumer := NewIndexConsumerService(pubSub, "INDEX_PASSAGES", table, &ragtest.Embedder{}, nil,
		logger.NewNopLogger(), func(r IndexReport) { reports <- r })
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewIngestPublisherService("INDEX_PASSAGES", pubSub)
	drafts := DocumentPassages("Plano de curso com estágio de 300 horas.", "quimica.pdf", "química")
	require.NoError(t, publisher.PublishCorpus(ctx, store.CorpusCurriculum, drafts))

	select {
	case r := <-reports:
		require.NoError(t, r.Err)
		assert.Equal(t, store.CorpusCurriculum, r.Corpus)
		assert.Equal(t, 1, r.Passages)
	case <-time.After(5 * time.Second):
		t.Fatal("corpus was not indexed")
	}

	rows := table.corpus(store.CorpusCurriculum)
	require.Len(t, rows, 1)
	assert.Equal(t, "quimica", rows[0].CourseKey)
}
