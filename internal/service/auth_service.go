package service

import (
	"context"

	"restopos/internal/api"
	"restopos/internal/dto"
	"restopos/internal/session"

	"github.com/rs/zerolog/log"
)

// AuthService performs login/logout and owns the session mutation. All other
// services only read the session through the manager.
type AuthService struct {
	auth     api.AuthAPI
	sessions *session.Manager
}

func NewAuthService(auth api.AuthAPI, sessions *session.Manager) *AuthService {
	return &AuthService{auth: auth, sessions: sessions}
}

// Login authenticates and installs the returned session.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*session.Session, error) {
	view, err := s.auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	sess := &session.Session{
		SessionID: view.SessionID,
		UserID:    view.UserID,
		Username:  view.Username,
		Role:      view.Role,
		TenantID:  view.TenantID,
		BranchID:  view.BranchID,
		ExpiresAt: view.ExpiresAt,
	}
	if err := s.sessions.Set(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout clears the local session no matter what the backend answers — a
// failed revoke must never leave the operator stuck logged in.
func (s *AuthService) Logout(ctx context.Context) error {
	if sess, ok := s.sessions.Current(); ok {
		if err := s.auth.Logout(ctx, sess.SessionID); err != nil {
			log.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
		}
	}
	return s.sessions.Clear()
}
