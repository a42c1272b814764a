package dto

import "time"

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// InviteUserRequest body para POST /api/users/invite (password en texto, se hashea en use case).
type InviteUserRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1"`
	FullName string `json:"fullName" validate:"max=200"`
	Role     string `json:"role" validate:"omitempty,oneof=owner admin"`
}

// ChangeRoleRequest body para PATCH /api/users/:id/role.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=owner admin"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  *string   `json:"fullName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserEnvelope {user}.
type UserEnvelope struct {
	User *UserResponse `json:"user"`
}

// UserListEnvelope {users}.
type UserListEnvelope struct {
	Users []UserResponse `json:"users"`
}

// LoginResult resultado interno de login: token para la cookie y usuario para el body.
type LoginResult struct {
	Token string
	User  UserResponse
}
