package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tonedial/calltone-backend/internal/platform/apierr"
	"github.com/tonedial/calltone-backend/internal/platform/logger"
	"github.com/tonedial/calltone-backend/internal/requestdata"
	"github.com/tonedial/calltone-backend/internal/services"
	"github.com/tonedial/calltone-backend/internal/types"
)

type CallToneHandler struct {
	log       *logger.Logger
	tones     services.CallToneService
	selection services.SelectionService
}

func NewCallToneHandler(log *logger.Logger, tones services.CallToneService, selection services.SelectionService) *CallToneHandler {
	return &CallToneHandler{
		log:       log.With("handler", "CallToneHandler"),
		tones:     tones,
		selection: selection,
	}
}

type listResponse struct {
	Count int               `json:"count"`
	Data  []*types.CallTone `json:"data"`
}

// GET /api/calltones?category=&isPublic=
func (h *CallToneHandler) List(c *gin.Context) {
	filter := services.ListFilter{
		PublicOnly: c.Query("isPublic") == "true",
		Category:   types.ToneCategory(c.Query("category")),
	}
	if filter.Category != "" && !filter.Category.Valid() {
		respondError(c, apierr.New(apierr.CodeValidation, "unknown category %q", filter.Category))
		return
	}
	tones, err := h.tones.ListVisible(c.Request.Context(), requestdata.UserID(c.Request.Context()), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, listResponse{Count: len(tones), Data: tones})
}

// GET /api/calltones/ai-generated
func (h *CallToneHandler) ListAIGenerated(c *gin.Context) {
	tones, err := h.tones.ListAIGenerated(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, listResponse{Count: len(tones), Data: tones})
}

// GET /api/calltones/:id
func (h *CallToneHandler) Get(c *gin.Context) {
	toneID, ok := parseIDParam(c)
	if !ok {
		return
	}
	tone, err := h.tones.Get(c.Request.Context(), toneID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tone)
}

// POST /api/calltones/upload (multipart form)
func (h *CallToneHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, apierr.New(apierr.CodeValidation, "please upload a file"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, apierr.Wrap(apierr.CodeValidation, err))
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	in := services.UploadInput{
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		IsPublic:    strings.EqualFold(c.PostForm("isPublic"), "true"),
		Tags:        c.PostForm("tags"),
	}

	tone, err := h.tones.Upload(c.Request.Context(), requestdata.UserID(c.Request.Context()), file, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, tone)
}

// DELETE /api/calltones/:id
func (h *CallToneHandler) Delete(c *gin.Context) {
	toneID, ok := parseIDParam(c)
	if !ok {
		return
	}
	err := h.tones.Delete(c.Request.Context(), requestdata.UserID(c.Request.Context()), toneID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "call tone deleted"})
}

// PUT /api/calltones/:id/select
func (h *CallToneHandler) Select(c *gin.Context) {
	toneID, ok := parseIDParam(c)
	if !ok {
		return
	}
	tone, err := h.selection.Select(c.Request.Context(), requestdata.UserID(c.Request.Context()), toneID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tone)
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{
			Error: APIError{Message: "invalid id", Code: string(apierr.CodeValidation)},
		})
		return uuid.Nil, false
	}
	return id, true
}
