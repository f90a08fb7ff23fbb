package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username"  validate:"required,min=3"`
	Password string `json:"password"  validate:"required"`
	TenantID string `json:"tenant_id" validate:"required"`
	BranchID string `json:"branch_id" validate:"required"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// SessionView is what the backend hands back on a successful login.
type SessionView struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TenantID  string `json:"tenant_id"`
	BranchID  string `json:"branch_id"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}
