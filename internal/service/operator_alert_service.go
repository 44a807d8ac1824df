package service

import (
	"context"
	"fmt"

	"jotha-be/internal/pkg/logger"
	"jotha-be/internal/pkg/mailer"
	"jotha-be/pkg/events"
	pktNats "jotha-be/pkg/nats"
)

// OperatorNotifier is the recorder's operator channel. Events go to the bus
// when one is configured; storage failures are mailed directly when there is
// no bus or the bus rejects the event.
type OperatorNotifier struct {
	publisher events.Publisher
	mailer    mailer.IEmailService
	logger    logger.ILogger
}

// NewOperatorNotifier accepts a nil publisher and a nil mailer.
func NewOperatorNotifier(publisher events.Publisher, mailer mailer.IEmailService, log logger.ILogger) *OperatorNotifier {
	return &OperatorNotifier{publisher: publisher, mailer: mailer, logger: log}
}

func (n *OperatorNotifier) Recorded(ctx context.Context, question string) {
	_ = n.publish(ctx, events.NewUnansweredRecorded(question))
}

func (n *OperatorNotifier) StorageFailed(ctx context.Context, question string, err error) {
	if n.publisher != nil && n.publish(ctx, events.NewUnansweredStorageFailed(question, err)) == nil {
		return
	}
	if n.mailer != nil {
		if mailErr := n.mailer.SendAlert(storageAlert(question, err.Error())); mailErr != nil {
			n.logger.Error("RECORDER", "Failed to mail storage alert", map[string]interface{}{"error": mailErr.Error()})
		}
	}
}

// publish logs its own failure; the error lets callers fall back.
func (n *OperatorNotifier) publish(ctx context.Context, evt events.Event) error {
	if n.publisher == nil {
		return nil
	}
	if err := n.publisher.Publish(ctx, evt); err != nil {
		n.logger.Warn("RECORDER", "Failed to publish operator event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func storageAlert(question, cause string) (string, string) {
	return "[JOTHA] Falha ao registrar pergunta não respondida",
		fmt.Sprintf("Pergunta: %s\nErro: %s", question, cause)
}

// Operator alert consumer

// EventSubscriber is the durable side of the operator bus.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

type IOperatorAlertService interface {
	Start(ctx context.Context) error
	HandleStorageFailed(ctx context.Context, event events.Event) error
}

type operatorAlertService struct {
	subscriber EventSubscriber
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewOperatorAlertService(subscriber EventSubscriber, mailer mailer.IEmailService, log logger.ILogger) IOperatorAlertService {
	return &operatorAlertService{subscriber: subscriber, mailer: mailer, logger: log}
}

// Start mails every storage failure published on the bus.
func (s *operatorAlertService) Start(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx,
		pktNats.Subject(events.TypeUnansweredStorageFailed),
		"operator-alerts",
		s.HandleStorageFailed,
	)
}

func (s *operatorAlertService) HandleStorageFailed(ctx context.Context, event events.Event) error {
	data := event.Payload()
	question, _ := data["question"].(string)
	cause, _ := data["error"].(string)

	if err := s.mailer.SendAlert(storageAlert(question, cause)); err != nil {
		s.logger.Error("ADMIN", "Failed to mail storage alert", map[string]interface{}{"error": err.Error()})
		return err
	}

	s.logger.Info("ADMIN", "Storage alert mailed", map[string]interface{}{"question": question})
	return nil
}
