// Package api wraps every named backend call in a typed signature. Each
// method validates its request client-side before touching the bridge, so an
// invalid payload never leaves the process.
package api

import (
	"context"

	"restopos/internal/bridge"
	"restopos/internal/dto"
)

type AuthAPI interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.SessionView, error)
	Logout(ctx context.Context, sessionID string) error
}

type authAPI struct{ b bridge.Caller }

func NewAuthAPI(b bridge.Caller) AuthAPI { return &authAPI{b: b} }

func (a *authAPI) Login(ctx context.Context, req dto.LoginRequest) (*dto.SessionView, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var view dto.SessionView
	if err := a.b.Call(ctx, "login", req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (a *authAPI) Logout(ctx context.Context, sessionID string) error {
	req := dto.LogoutRequest{SessionID: sessionID}
	if err := dto.Validate(req); err != nil {
		return err
	}
	return a.b.Call(ctx, "logout", req, nil)
}
