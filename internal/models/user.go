package models

import "time"

type User struct {
	ID           UserID `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// Created derives the account creation time from the v7 identifier.
func (u User) Created() time.Time {
	return u.ID.Time()
}

// UserPatch carries partial-field updates; nil fields are left untouched.
type UserPatch struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	PasswordHash *string `json:"password_hash,omitempty"`
}
