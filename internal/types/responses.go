package types

import "github.com/workplane-dev/workplane/internal/models"

type UserResponse struct {
	ID    models.UserID `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
}
