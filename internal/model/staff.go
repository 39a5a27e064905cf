package model

type Staff struct {
	Base
	Name         string `db:"name" json:"name"`
	Phone        string `db:"phone" json:"phone"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         string `db:"role" json:"role"`
	Status       string `db:"status" json:"status"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Staff *Staff `json:"staff"`
}
