package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jotha-be/internal/dto"
	"jotha-be/internal/entity"
	"jotha-be/internal/pkg/logger"
	"jotha-be/internal/repository/unitofwork"
	"jotha-be/pkg/embedding"
	"jotha-be/pkg/events"
	"jotha-be/pkg/rag/course"
	"jotha-be/pkg/store"
	"jotha-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Builders turning extracted PDF text into passage drafts.

// FAQPassages splits the FAQ into numbered sections tagged with their course.
func FAQPassages(text, file string) []dto.PassageDraft {
	blocks := utils.SplitFAQ(text)
	drafts := make([]dto.PassageDraft, 0, len(blocks))
	for _, b := range blocks {
		drafts = append(drafts, dto.PassageDraft{
			Content:   b.Text,
			Course:    b.Course,
			CourseKey: b.CourseKey,
			SearchKey: b.SearchKey,
			File:      file,
		})
	}
	return drafts
}

// DocumentPassages chunks a legal or curriculum document. An empty courseName
// tags every chunk as "geral".
func DocumentPassages(text, file, courseName string) []dto.PassageDraft {
	key := course.Normalize(courseName)
	if key == "" {
		key = course.General
	}

	chunks := utils.SplitText(text, utils.DefaultChunkSize, utils.DefaultChunkOverlap)
	drafts := make([]dto.PassageDraft, 0, len(chunks))
	for _, c := range chunks {
		drafts = append(drafts, dto.PassageDraft{
			Content:   c,
			Course:    courseName,
			CourseKey: key,
			File:      file,
		})
	}
	return drafts
}

// Publisher side

type IIngestPublisherService interface {
	PublishCorpus(ctx context.Context, corpus string, passages []dto.PassageDraft) error
}

type ingestPublisherService struct {
	topicName string
	publisher message.Publisher
}

func NewIngestPublisherService(topicName string, publisher message.Publisher) IIngestPublisherService {
	return &ingestPublisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (s *ingestPublisherService) PublishCorpus(ctx context.Context, corpus string, passages []dto.PassageDraft) error {
	payload, err := json.Marshal(dto.IndexCorpusMessage{Corpus: corpus, Passages: passages})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return s.publisher.Publish(s.topicName, msg)
}

// Consumer side

// IndexReport is the outcome of one corpus replacement.
type IndexReport struct {
	Corpus   string
	Passages int
	Err      error
}

type IIndexConsumerService interface {
	Consume(ctx context.Context) error
	Index(ctx context.Context, req dto.IndexCorpusMessage) (int, error)
}

type indexConsumerService struct {
	subscriber        message.Subscriber
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    events.Publisher
	logger            logger.ILogger
	onReport          func(IndexReport)
}

// NewIndexConsumerService wires the corpus consumer. eventPublisher and
// onReport are optional.
func NewIndexConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher events.Publisher,
	log logger.ILogger,
	onReport func(IndexReport),
) IIndexConsumerService {
	return &indexConsumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		logger:            log,
		onReport:          onReport,
	}
}

func (cs *indexConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: a corpus that failed to index is reported and
// re-run by the operator, never redelivered in a loop.
func (cs *indexConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var req dto.IndexCorpusMessage
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		cs.logger.Error("INGEST", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		cs.report(IndexReport{Err: fmt.Errorf("decode message %s: %w", msg.UUID, err)})
		return
	}

	n, err := cs.Index(ctx, req)
	cs.report(IndexReport{Corpus: req.Corpus, Passages: n, Err: err})
}

func (cs *indexConsumerService) report(r IndexReport) {
	if cs.onReport != nil {
		cs.onReport(r)
	}
}

// Index embeds every draft and replaces the corpus in a single transaction.
func (cs *indexConsumerService) Index(ctx context.Context, req dto.IndexCorpusMessage) (int, error) {
	switch req.Corpus {
	case store.CorpusFAQ, store.CorpusLegal, store.CorpusCurriculum:
	default:
		return 0, fmt.Errorf("unknown corpus %q", req.Corpus)
	}

	cs.logger.Info("INGEST", "Embedding corpus", map[string]interface{}{
		"corpus":   req.Corpus,
		"passages": len(req.Passages),
	})

	now := time.Now()
	passages := make([]*entity.Passage, 0, len(req.Passages))
	for i, draft := range req.Passages {
		res, err := cs.embeddingProvider.Generate(ctx, draft.Content, embedding.TaskRetrievalDocument)
		if err != nil {
			cs.logger.Error("INGEST", "Failed to generate embedding", map[string]interface{}{
				"corpus": req.Corpus,
				"chunk":  i,
				"error":  err.Error(),
			})
			return 0, fmt.Errorf("embed %s chunk %d: %w", req.Corpus, i, err)
		}

		passages = append(passages, newPassage(req.Corpus, i, draft, res.Embedding.Values, now))
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PassageRepository().DeleteByCorpus(ctx, req.Corpus); err != nil {
		return 0, fmt.Errorf("delete old %s passages: %w", req.Corpus, err)
	}

	if len(passages) > 0 {
		if err := uow.PassageRepository().CreateBulk(ctx, passages); err != nil {
			return 0, fmt.Errorf("create %s passages: %w", req.Corpus, err)
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s passages: %w", req.Corpus, err)
	}

	cs.logger.Info("INGEST", "Corpus indexed", map[string]interface{}{
		"corpus":   req.Corpus,
		"passages": len(passages),
	})

	if cs.eventPublisher != nil {
		if err := cs.eventPublisher.Publish(ctx, events.NewCorpusIndexed(req.Corpus, len(passages))); err != nil {
			cs.logger.Warn("INGEST", "Failed to publish corpus event", map[string]interface{}{"error": err.Error()})
		}
	}

	return len(passages), nil
}

func newPassage(corpus string, index int, draft dto.PassageDraft, vector []float32, now time.Time) *entity.Passage {
	key := draft.CourseKey
	if key == "" {
		key = course.General
	}

	meta := map[string]interface{}{
		store.MetaSource: corpus,
		store.MetaCourse: key,
	}
	if draft.SearchKey != "" {
		meta[store.MetaSearchKey] = draft.SearchKey
	}
	if draft.File != "" {
		meta["file"] = draft.File
	}

	return &entity.Passage{
		Id:         uuid.New(),
		Corpus:     corpus,
		Content:    draft.Content,
		Course:     draft.Course,
		CourseKey:  key,
		SearchKey:  draft.SearchKey,
		Metadata:   meta,
		Embedding:  vector,
		ChunkIndex: index,
		CreatedAt:  now,
	}
}
