package service

import (
	"context"
	"strings"

	"github.com/jobscout/jobscout/internal/ai"
	"github.com/jobscout/jobscout/internal/model"
	appErr "github.com/jobscout/jobscout/internal/pkg/errors"
)

type jobLookup interface {
	GetByURL(ctx context.Context, url string) (*model.Job, error)
}

// AssistService produces the pro-tier writing helpers. It stitches the
// caller's profile and a stored job into the generation prompts.
type AssistService struct {
	jobs     jobLookup
	profiles profileStore
	writer   *ai.Writer
}

func NewAssistService(jobs jobLookup, profiles profileStore, writer *ai.Writer) *AssistService {
	return &AssistService{jobs: jobs, profiles: profiles, writer: writer}
}

func (s *AssistService) CoverLetter(ctx context.Context, userID, plan, jobURL string) (string, error) {
	profileText, job, err := s.load(ctx, userID, plan, jobURL)
	if err != nil {
		return "", err
	}
	return s.writer.CoverLetter(ctx, profileText, job.Title, job.Company, job.Description)
}

func (s *AssistService) InterviewPrep(ctx context.Context, userID, plan, jobURL string) (string, error) {
	profileText, job, err := s.load(ctx, userID, plan, jobURL)
	if err != nil {
		return "", err
	}
	return s.writer.InterviewPrep(ctx, profileText, job.Title, job.Company, job.Description)
}

func (s *AssistService) load(ctx context.Context, userID, plan, jobURL string) (string, *model.Job, error) {
	if !strings.EqualFold(plan, PlanPro) {
		return "", nil, appErr.ErrForbidden
	}
	if jobURL == "" {
		return "", nil, appErr.ErrInvalid
	}
	job, err := s.jobs.GetByURL(ctx, jobURL)
	if err != nil {
		return "", nil, err
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil && !appErr.IsNotFound(err) {
		return "", nil, err
	}
	profileText := ""
	if profile != nil {
		profileText = profile.MatchText()
	}
	if profileText == "" {
		return "", nil, appErr.ErrInvalid
	}
	return profileText, job, nil
}
