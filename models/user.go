package models

import "time"

// User là tài khoản đã đăng ký
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // bcrypt của credential client gửi lên
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// LoginResponse carries the user fields and a bearer token.
type LoginResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}
