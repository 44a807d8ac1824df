package dto

import "time"

type AdminLoginRequest struct {
	Secret string `json:"secret" validate:"required"`
}

type AdminLoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UnansweredQuestionResponse struct {
	Question string `json:"question"`
}

type UnansweredListResponse struct {
	Total     int                          `json:"total"`
	Questions []UnansweredQuestionResponse `json:"questions"`
}
