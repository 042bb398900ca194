package dto

import (
	"github.com/google/uuid"

	"gussgame/src/core/domain"
	"gussgame/src/core/ports"
)

// LoginRequest is the payload for /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       uuid.UUID   `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type MeResponse struct {
	User UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func UserFromDomain(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}

func UserFromPrincipal(p *ports.Principal) UserResponse {
	return UserResponse{ID: p.UserID, Username: p.Username, Role: p.Role}
}
