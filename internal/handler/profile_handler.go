package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/jobscout/jobscout/internal/model"
	"github.com/jobscout/jobscout/internal/pkg/errcode"
	"github.com/jobscout/jobscout/internal/pkg/response"
	"github.com/jobscout/jobscout/internal/service"
)

type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, profile)
}

type updateProfileRequest struct {
	Headline  string `json:"headline"`
	Skills    string `json:"skills"`
	Locations string `json:"locations"`
	Summary   string `json:"summary"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	profile, err := h.profiles.Update(c.Request.Context(), getUserID(c), &model.Profile{
		Headline:  req.Headline,
		Skills:    req.Skills,
		Locations: req.Locations,
		Summary:   req.Summary,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, profile)
}

func (h *ProfileHandler) UploadResume(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "failed to open file")
		return
	}
	defer opened.Close()

	key, err := h.profiles.SaveResume(c.Request.Context(), getUserID(c), file.Filename, opened, file.Size)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"resume_key": key, "name": file.Filename})
}

func (h *ProfileHandler) DownloadResume(c *gin.Context) {
	link, err := h.profiles.ResumeURL(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if link != "" {
		c.Redirect(http.StatusFound, link)
		return
	}
	reader, name, err := h.profiles.OpenResume(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	defer reader.Close()
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = reader.Seek(0, 0)
	_, _ = io.Copy(c.Writer, reader)
}
