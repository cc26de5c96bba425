package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jobscout/jobscout/internal/middleware"
	"github.com/jobscout/jobscout/internal/ratelimit"
)

type RouterDeps struct {
	Jobs      *JobHandler
	Scrapes   *ScrapeHandler
	Profiles  *ProfileHandler
	Assist    *AssistHandler
	Limiter   *ratelimit.Limiter
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	// Fetch and the AI writers burn upstream quota; they sit behind the
	// per-tier limiter. Reads do not.
	limited := authGroup.Group("")
	limited.Use(middleware.RateLimit(deps.Limiter))
	limited.POST("/jobs/fetch", deps.Jobs.Fetch)
	limited.POST("/assist/cover-letter", deps.Assist.CoverLetter)
	limited.POST("/assist/interview-prep", deps.Assist.InterviewPrep)

	authGroup.GET("/jobs", deps.Jobs.List)
	authGroup.GET("/jobs/search", deps.Jobs.Search)
	authGroup.GET("/jobs/matches", deps.Jobs.Matches)

	authGroup.POST("/scrape/deep", deps.Scrapes.Trigger)
	authGroup.GET("/scrape/deep", deps.Scrapes.List)
	authGroup.GET("/scrape/deep/:id", deps.Scrapes.Get)

	authGroup.GET("/profile", deps.Profiles.Get)
	authGroup.PUT("/profile", deps.Profiles.Update)
	authGroup.POST("/profile/resume", deps.Profiles.UploadResume)
	authGroup.GET("/profile/resume", deps.Profiles.DownloadResume)
}
