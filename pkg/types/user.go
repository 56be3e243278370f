package types

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

type Role string

const (
	RoleMJPM      Role = "mjpm"
	RoleDeliverer Role = "deliverer"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
