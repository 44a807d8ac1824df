package service

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/csv"
	"errors"
	"time"

	"jotha-be/internal/dto"
	"jotha-be/internal/pkg/logger"
	"jotha-be/pkg/rag/recorder"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrUnauthorized = errors.New("invalid admin secret")

// UnansweredLister reads the recorded questions.
type UnansweredLister interface {
	List(ctx context.Context) ([]string, error)
}

type IAdminService interface {
	Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
	ListUnanswered(ctx context.Context) (*dto.UnansweredListResponse, error)
	ExportUnansweredCSV(ctx context.Context) ([]byte, error)
	GetSystemLogs(ctx context.Context, page, limit int, level string) ([]*dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error)
}

// AdminAuthConfig is the shared-secret gate of the admin panel.
type AdminAuthConfig struct {
	Secret     string // compared in constant time
	SecretHash string // bcrypt, takes precedence over Secret
	JWTSecret  string
	TokenTTL   time.Duration
}

type adminService struct {
	auth       AdminAuthConfig
	unanswered UnansweredLister
	logger     logger.ILogger
}

func NewAdminService(auth AdminAuthConfig, unanswered UnansweredLister, log logger.ILogger) IAdminService {
	if auth.TokenTTL <= 0 {
		auth.TokenTTL = 12 * time.Hour
	}
	return &adminService{
		auth:       auth,
		unanswered: unanswered,
		logger:     log,
	}
}

func (s *adminService) Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	if !s.secretMatches(req.Secret) {
		s.logger.Warn("ADMIN", "Rejected admin login", nil)
		return nil, ErrUnauthorized
	}
	if s.auth.JWTSecret == "" {
		return nil, errors.New("JWT secret is not configured")
	}

	expiresAt := time.Now().Add(s.auth.TokenTTL)
	claims := jwt.MapClaims{
		"sub":  "admin",
		"role": "admin",
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.auth.JWTSecret))
	if err != nil {
		return nil, err
	}

	s.logger.Info("ADMIN", "Admin logged in", nil)
	return &dto.AdminLoginResponse{AccessToken: signedToken, ExpiresAt: expiresAt}, nil
}

// secretMatches is false when no secret is configured, which disables the panel.
func (s *adminService) secretMatches(given string) bool {
	if given == "" {
		return false
	}
	if s.auth.SecretHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.auth.SecretHash), []byte(given)) == nil
	}
	if s.auth.Secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.auth.Secret), []byte(given)) == 1
}

func (s *adminService) ListUnanswered(ctx context.Context) (*dto.UnansweredListResponse, error) {
	questions, err := s.unanswered.List(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.UnansweredListResponse{
		Total:     len(questions),
		Questions: make([]dto.UnansweredQuestionResponse, 0, len(questions)),
	}
	for _, q := range questions {
		res.Questions = append(res.Questions, dto.UnansweredQuestionResponse{Question: q})
	}
	return res, nil
}

// ExportUnansweredCSV renders the same single-column layout as the CSV store.
func (s *adminService) ExportUnansweredCSV(ctx context.Context) ([]byte, error) {
	questions, err := s.unanswered.List(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{recorder.Header}); err != nil {
		return nil, err
	}
	for _, q := range questions {
		if err := w.Write([]string{q}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *adminService) GetSystemLogs(ctx context.Context, page, limit int, level string) ([]*dto.LogListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	logs, err := s.logger.GetLogs(level, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.LogListResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, toLogListResponse(l))
	}
	return res, nil
}

func (s *adminService) GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error) {
	l, err := s.logger.GetLogById(logId)
	if err != nil {
		return nil, err
	}
	return &dto.LogDetailResponse{
		LogListResponse: *toLogListResponse(*l),
		Details:         l.Details,
	}, nil
}

func toLogListResponse(l logger.LogEntry) *dto.LogListResponse {
	// zap's ISO8601 encoder writes millisecond offsets like 2006-01-02T15:04:05.000Z0700.
	ts, err := time.Parse("2006-01-02T15:04:05.000Z0700", l.Timestamp)
	if err != nil {
		ts, _ = time.Parse(time.RFC3339, l.Timestamp)
	}
	return &dto.LogListResponse{
		Id:        l.Id,
		Level:     l.Level,
		Module:    l.Module,
		Message:   l.Message,
		CreatedAt: ts,
	}
}
