package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"jotha-be/internal/dto"
	"jotha-be/internal/pkg/logger"
	"jotha-be/internal/repository/contract"
	"jotha-be/pkg/rag"
	"jotha-be/pkg/rag/course"
	"jotha-be/pkg/rag/pipeline"
	"jotha-be/pkg/rag/response"
	"jotha-be/pkg/store"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrCourseAlreadySet = errors.New("course already declared for this session, reset the session to change it")
	ErrCourseRequired   = errors.New("course is required")
	ErrQuestionRequired = errors.New("question is required")
)

const excerptLen = 240

// Answerer produces an answer for one question of one session.
type Answerer interface {
	Answer(ctx context.Context, question string, session *store.Session) (*pipeline.Answer, error)
}

// UnansweredRecorder keeps questions the assistant could not ground.
type UnansweredRecorder interface {
	Record(ctx context.Context, question string) error
}

type IChatService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	DeclareCourse(ctx context.Context, req *dto.DeclareCourseRequest) (*dto.DeclareCourseResponse, error)
	ResetSession(ctx context.Context, sessionId string) error
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	GetHistory(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error)
}

type chatService struct {
	sessionRepo    contract.SessionRepository
	answerer       Answerer
	recorder       UnansweredRecorder
	catalog        *course.Catalog
	requestTimeout time.Duration
	logger         logger.ILogger
	now            func() time.Time

	// locks serializes load->save per session id.
	locks sessionLocks
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks hands out one mutex per session id and drops it once no
// caller holds or waits on it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// NewChatService wires the chat use cases. catalog may be nil; a zero
// requestTimeout disables the per-question deadline.
func NewChatService(
	sessionRepo contract.SessionRepository,
	answerer Answerer,
	recorder UnansweredRecorder,
	catalog *course.Catalog,
	requestTimeout time.Duration,
	log logger.ILogger,
) IChatService {
	return &chatService{
		sessionRepo:    sessionRepo,
		answerer:       answerer,
		recorder:       recorder,
		catalog:        catalog,
		requestTimeout: requestTimeout,
		logger:         log,
		now:            time.Now,
	}
}

func (s *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	now := s.now()
	session := &store.Session{
		ID:        uuid.New().String(),
		History:   []store.Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("CHAT", "Session created", map[string]interface{}{"session_id": session.ID})
	return &dto.CreateSessionResponse{SessionId: session.ID, CreatedAt: now}, nil
}

func (s *chatService) load(ctx context.Context, sessionId string) (*store.Session, error) {
	session, err := s.sessionRepo.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *chatService) DeclareCourse(ctx context.Context, req *dto.DeclareCourseRequest) (*dto.DeclareCourseResponse, error) {
	label := strings.TrimSpace(req.Course)
	key := course.Normalize(label)
	if key == "" {
		return nil, ErrCourseRequired
	}

	unlock := s.locks.lock(req.SessionId)
	defer unlock()

	session, err := s.load(ctx, req.SessionId)
	if err != nil {
		return nil, err
	}
	if session.HasCourse() {
		return nil, ErrCourseAlreadySet
	}

	session.Course = key
	session.CourseLabel = label
	session.UpdatedAt = s.now()
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	res := &dto.DeclareCourseResponse{Course: key, CourseLabel: label}
	if suggestion, ok := s.catalog.Infer(label); ok && suggestion.Key != key {
		res.Suggestion = &suggestion
	}

	s.logger.Info("CHAT", "Course declared", map[string]interface{}{
		"session_id": session.ID,
		"course":     key,
	})
	return res, nil
}

func (s *chatService) ResetSession(ctx context.Context, sessionId string) error {
	unlock := s.locks.lock(sessionId)
	defer unlock()

	if _, err := s.load(ctx, sessionId); err != nil {
		return err
	}
	if err := s.sessionRepo.Delete(ctx, sessionId); err != nil {
		return err
	}

	s.logger.Info("CHAT", "Session reset", map[string]interface{}{"session_id": sessionId})
	return nil
}

func (s *chatService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrQuestionRequired
	}

	// Held across the pipeline call: a second question, a course
	// declaration or a reset on the same session waits for this answer.
	unlock := s.locks.lock(req.SessionId)
	defer unlock()

	session, err := s.load(ctx, req.SessionId)
	if err != nil {
		return nil, err
	}

	askCtx := ctx
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		askCtx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	ans, err := s.answerer.Answer(askCtx, question, session)
	if ans == nil {
		ans = &pipeline.Answer{Text: response.UnavailableMessage, Outcome: pipeline.OutcomeUnavailable}
	}
	if err != nil && !errors.Is(err, rag.ErrNoGroundedAnswer) {
		s.logger.Warn("CHAT", "Question not answered from sources", map[string]interface{}{
			"session_id": session.ID,
			"outcome":    ans.Outcome,
			"error":      err.Error(),
		})
	}

	if !ans.Grounded {
		if err := s.recorder.Record(ctx, question); err != nil {
			s.logger.Error("CHAT", "Unanswered question not recorded", map[string]interface{}{
				"session_id": session.ID,
				"error":      err.Error(),
			})
		}
	}

	now := s.now()
	session.Append(store.SpeakerUser, question, now)
	session.Append(store.SpeakerAssistant, ans.Text, now)
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	return &dto.AskResponse{
		Answer:   ans.Text,
		Grounded: ans.Grounded,
		Outcome:  ans.Outcome,
		Sources:  toSources(ans.Passages),
	}, nil
}

func (s *chatService) GetHistory(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error) {
	session, err := s.load(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	turns := make([]dto.TurnResponse, 0, len(session.History))
	for _, t := range session.History {
		turns = append(turns, dto.TurnResponse{Speaker: t.Speaker, Text: t.Text, At: t.At})
	}

	return &dto.SessionHistoryResponse{
		SessionId:   session.ID,
		Course:      session.Course,
		CourseLabel: session.CourseLabel,
		Turns:       turns,
	}, nil
}

func toSources(docs []store.Document) []dto.SourceResponse {
	if len(docs) == 0 {
		return nil
	}
	res := make([]dto.SourceResponse, 0, len(docs))
	for _, d := range docs {
		res = append(res, dto.SourceResponse{
			Source:  d.Source,
			Course:  d.Course(),
			Score:   d.Score,
			Excerpt: excerpt(d.Content, excerptLen),
		})
	}
	return res
}

func excerpt(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "…"
}
