package bootstrap

import (
	"jotha-be/internal/config"
	"jotha-be/internal/pkg/logger"
	"jotha-be/internal/repository/unitofwork"
	"jotha-be/internal/service"
	"jotha-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

// Ingestion is the in-process queue between the PDF readers and the embedder.
type Ingestion struct {
	Publisher service.IIngestPublisherService
	Consumer  service.IIndexConsumerService
	pubSub    *gochannel.GoChannel
}

// NewIngestion wires the corpus queue. Publishing blocks until the consumer
// acked the message, so a returned PublishCorpus means the corpus was processed.
func NewIngestion(db *gorm.DB, cfg *config.Config, log logger.ILogger, eventPublisher events.Publisher, onReport func(service.IndexReport)) (*Ingestion, error) {
	embeddingProvider, err := NewEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NewStdLogger(false, false),
	)

	return &Ingestion{
		Publisher: service.NewIngestPublisherService(cfg.Rag.IngestTopic, pubSub),
		Consumer: service.NewIndexConsumerService(
			pubSub,
			cfg.Rag.IngestTopic,
			unitofwork.NewRepositoryFactory(db),
			embeddingProvider,
			eventPublisher,
			log,
			onReport,
		),
		pubSub: pubSub,
	}, nil
}

func (i *Ingestion) Close() error {
	return i.pubSub.Close()
}
