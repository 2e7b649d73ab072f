package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/service"
	"github.com/workplane-dev/workplane/internal/utils"
)

func (h *Handlers) UploadFile(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := utils.CurrentMembership(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if !membership.Role.AtLeast(models.RoleMember) {
		h.respondError(ctx, service.ErrForbidden)
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to open uploaded file")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer file.Close()

	filename, err := h.blob.Save(workplaceID, header.Filename, file)
	if err != nil {
		h.log.Error().Err(err).Str("workplace", workplaceID.String()).Msg("failed to store file")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"url": fmt.Sprintf("/workplaces/%s/file/%s", workplaceID, filename),
	})
}

func (h *Handlers) DownloadFile(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := utils.CurrentMembership(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if !membership.Role.AtLeast(models.RoleMember) {
		h.respondError(ctx, service.ErrForbidden)
		return
	}

	path, err := h.blob.Path(workplaceID, ctx.Param("filename"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		h.log.Error().Err(err).Str("workplace", workplaceID.String()).Msg("failed to resolve file")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.File(path)
}
