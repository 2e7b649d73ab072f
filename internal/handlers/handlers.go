package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/workplane-dev/workplane/internal/auth"
	"github.com/workplane-dev/workplane/internal/blob"
	"github.com/workplane-dev/workplane/internal/service"
	"github.com/workplane-dev/workplane/internal/store"
)

type Handlers struct {
	service *service.Service
	store   store.Store
	auth    *auth.Manager
	blob    *blob.LocalStore
	domain  string
	log     zerolog.Logger
}

func New(svc *service.Service, st store.Store, mgr *auth.Manager, files *blob.LocalStore, cookieDomain string, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: svc,
		store:   st,
		auth:    mgr,
		blob:    files,
		domain:  cookieDomain,
		log:     log,
	}
}

// respondError maps domain errors onto HTTP statuses: rule violations
// read as 400, missing documents as 404, role rejections as 403.
// Anything else is logged and reported as a 500.
func (h *Handlers) respondError(ctx *gin.Context, err error) {
	var vErr *service.ValidationError

	switch {
	case errors.As(err, &vErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": vErr.Reason})
	case errors.Is(err, store.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		h.log.Error().Err(err).Str("path", ctx.FullPath()).Msg("request failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
