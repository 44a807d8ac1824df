package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"jotha-be/internal/dto"
	"jotha-be/internal/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeLister struct {
	questions []string
	err       error
}

func (f *fakeLister) List(ctx context.Context) ([]string, error) {
	return f.questions, f.err
}

func TestAdminServiceLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name    string
		auth    AdminAuthConfig
		secret  string
		wantErr error
	}{
		{"plain secret", AdminAuthConfig{Secret: "s3nha"}, "s3nha", nil},
		{"plain secret mismatch", AdminAuthConfig{Secret: "s3nha"}, "senha", ErrUnauthorized},
		{"bcrypt hash", AdminAuthConfig{SecretHash: string(hash)}, "hashed-secret", nil},
		{"hash wins over plain", AdminAuthConfig{Secret: "s3nha", SecretHash: string(hash)}, "s3nha", ErrUnauthorized},
		{"panel disabled", AdminAuthConfig{}, "", ErrUnauthorized},
		{"panel disabled ignores input", AdminAuthConfig{}, "anything", ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.auth.JWTSecret = "jwt-key"
			svc := NewAdminService(tt.auth, &fakeLister{}, logger.NewNopLogger())

			res, err := svc.Login(context.Background(), &dto.AdminLoginRequest{Secret: tt.secret})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			token, err := jwt.Parse(res.AccessToken, func(t *jwt.Token) (interface{}, error) {
				return []byte("jwt-key"), nil
			})
			require.NoError(t, err)
			claims := token.Claims.(jwt.MapClaims)
			assert.Equal(t, "admin", claims["role"])
			assert.False(t, res.ExpiresAt.IsZero())
		})
	}
}

func TestAdminServiceUnanswered(t *testing.T) {
	lister := &fakeLister{questions: []string{"Posso estagiar aos sábados?", "Carga horária, mínima?"}}
	svc := NewAdminService(AdminAuthConfig{}, lister, logger.NewNopLogger())

	list, err := svc.ListUnanswered(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "Posso estagiar aos sábados?", list.Questions[0].Question)

	csvBytes, err := svc.ExportUnansweredCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pergunta\nPosso estagiar aos sábados?\n\"Carga horária, mínima?\"\n", string(csvBytes))
}

func TestAdminServiceUnansweredEmptyAndFailing(t *testing.T) {
	svc := NewAdminService(AdminAuthConfig{}, &fakeLister{}, logger.NewNopLogger())
	list, err := svc.ListUnanswered(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
	assert.NotNil(t, list.Questions)

	boom := errors.New("read failed")
	svc = NewAdminService(AdminAuthConfig{}, &fakeLister{err: boom}, logger.NewNopLogger())
	_, err = svc.ExportUnansweredCSV(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestAdminServiceLogs(t *testing.T) {
	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "app.log"))
	log.Info("CHAT", "Session created", map[string]interface{}{"session_id": "abc"})
	log.Warn("RECORDER", "Question already recorded", nil)
	require.NoError(t, log.Sync())

	svc := NewAdminService(AdminAuthConfig{}, &fakeLister{}, log)

	logs, err := svc.GetSystemLogs(context.Background(), 1, 10, "")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "RECORDER", logs[0].Module)
	assert.False(t, logs[0].CreatedAt.IsZero())

	detail, err := svc.GetLogDetail(context.Background(), logs[1].Id)
	require.NoError(t, err)
	assert.Equal(t, "abc", detail.Details["session_id"])

	_, err = svc.GetLogDetail(context.Background(), "missing")
	assert.ErrorIs(t, err, logger.ErrLogNotFound)
}
