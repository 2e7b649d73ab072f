// Package service implements the linked document graph manager: entity
// lifecycle on top of the store with cascade delete and detach semantics,
// sprint overlap validation, and the membership role gate.
//
// Mutating operations take the caller's pre-resolved membership and check
// its role before touching the store. Cascade steps run sequentially; the
// first failed persist aborts the remaining steps and propagates.
package service

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/workplane-dev/workplane/internal/mail"
	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
)

// ErrForbidden is returned when the caller's role is below the level an
// operation requires.
var ErrForbidden = errors.New("insufficient role")

// ValidationError reports a business-rule violation with a reason fit for
// the API response.
type ValidationError struct {
	Reason string
	err    error
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return e.err }

func validation(reason string) error {
	return &ValidationError{Reason: reason}
}

type Service struct {
	store store.Store
	mail  mail.Mailer
	log   zerolog.Logger
}

func New(st store.Store, mailer mail.Mailer, log zerolog.Logger) *Service {
	return &Service{store: st, mail: mailer, log: log}
}

func requireRole(actor *models.Membership, min models.Role) error {
	if !actor.Role.AtLeast(min) {
		return ErrForbidden
	}
	return nil
}
