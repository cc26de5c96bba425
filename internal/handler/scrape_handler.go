package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jobscout/jobscout/internal/pkg/errcode"
	"github.com/jobscout/jobscout/internal/pkg/response"
	"github.com/jobscout/jobscout/internal/service"
)

type ScrapeHandler struct {
	scrapes *service.ScrapeService
}

func NewScrapeHandler(scrapes *service.ScrapeService) *ScrapeHandler {
	return &ScrapeHandler{scrapes: scrapes}
}

type deepScrapeRequest struct {
	Source   string `json:"source"`
	Query    string `json:"query"`
	Location string `json:"location"`
	Notify   string `json:"notify"`
}

// Trigger accepts a deep-scrape request and hands it to the queue. The
// response is an acknowledgment; progress is polled via Get.
func (h *ScrapeHandler) Trigger(c *gin.Context) {
	var req deepScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Source == "" || req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "source and query are required")
		return
	}
	record, err := h.scrapes.Trigger(c.Request.Context(), getUserID(c), getPlan(c),
		req.Source, req.Query, strings.TrimSpace(req.Location), strings.TrimSpace(req.Notify))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"request_id": record.ID, "status": record.Status})
}

func (h *ScrapeHandler) Get(c *gin.Context) {
	record, err := h.scrapes.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, record)
}

func (h *ScrapeHandler) List(c *gin.Context) {
	records, err := h.scrapes.ListForUser(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": records})
}
