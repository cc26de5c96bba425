package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jobscout/jobscout/internal/pkg/errcode"
	"github.com/jobscout/jobscout/internal/pkg/response"
	"github.com/jobscout/jobscout/internal/service"
)

type JobHandler struct {
	ingest   *service.IngestService
	jobs     *service.JobService
	profiles *service.ProfileService
}

func NewJobHandler(ingest *service.IngestService, jobs *service.JobService, profiles *service.ProfileService) *JobHandler {
	return &JobHandler{ingest: ingest, jobs: jobs, profiles: profiles}
}

type fetchJobsRequest struct {
	Query    string `json:"query"`
	Location string `json:"location"`
}

type fetchJobsResponse struct {
	Count   int            `json:"count"`
	Failed  int            `json:"failed"`
	Sources map[string]int `json:"sources"`
}

// Fetch triggers a parallel pull from every configured board and persists
// the results. The response reports per-source tallies, not job bodies.
func (h *JobHandler) Fetch(c *gin.Context) {
	var req fetchJobsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "query is required")
		return
	}
	report, err := h.ingest.FetchAndSaveJobs(c.Request.Context(), req.Query, strings.TrimSpace(req.Location))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, fetchJobsResponse{
		Count:   report.Saved,
		Failed:  report.FailedCount(),
		Sources: report.PerSource,
	})
}

func (h *JobHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	jobs, err := h.jobs.GetJobs(c.Request.Context(), page, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": jobs, "page": page})
}

func (h *JobHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.Error(c, errcode.ErrInvalid, "q is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	result, err := h.jobs.SearchJobs(c.Request.Context(), query, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Matches ranks stored jobs against the caller's profile text.
func (h *JobHandler) Matches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	profile, err := h.profiles.Get(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	result, err := h.jobs.MatchesForProfile(c.Request.Context(), profile, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
