package handler

import "github.com/bookhive/bookhive-api/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,password"`
}

// loginRequest identifies the account by username, email, or both.
type loginRequest struct {
	Username string `json:"username" validate:"required_without=Email,max=255"`
	Email    string `json:"email"    validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"required"`
}

type userPathParams struct {
	UID string `validate:"required,uuid"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type userResponse struct {
	UID         string `json:"uid"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsActivated bool   `json:"is_activated"`
	IsVerified  bool   `json:"is_verified"`
	IsSuperuser bool   `json:"is_superuser"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		UID:         u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsActivated: u.IsActivated,
		IsVerified:  u.IsVerified,
		IsSuperuser: u.IsSuperuser,
	}
}
