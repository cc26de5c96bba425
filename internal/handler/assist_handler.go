package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jobscout/jobscout/internal/pkg/errcode"
	"github.com/jobscout/jobscout/internal/pkg/response"
	"github.com/jobscout/jobscout/internal/service"
)

type AssistHandler struct {
	assist *service.AssistService
}

func NewAssistHandler(assist *service.AssistService) *AssistHandler {
	return &AssistHandler{assist: assist}
}

type assistRequest struct {
	JobURL string `json:"job_url"`
}

func (h *AssistHandler) CoverLetter(c *gin.Context) {
	h.run(c, h.assist.CoverLetter)
}

func (h *AssistHandler) InterviewPrep(c *gin.Context) {
	h.run(c, h.assist.InterviewPrep)
}

func (h *AssistHandler) run(c *gin.Context, fn func(ctx context.Context, userID, plan, jobURL string) (string, error)) {
	var req assistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	req.JobURL = strings.TrimSpace(req.JobURL)
	if req.JobURL == "" {
		response.Error(c, errcode.ErrInvalid, "job_url is required")
		return
	}
	text, err := fn(c.Request.Context(), getUserID(c), getPlan(c), req.JobURL)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"text": text})
}
