package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Writer produces the pro-tier long-form texts (cover letter, interview
// prep) from a profile and a job posting.
type Writer struct {
	provider IProvider
	model    string
	timeout  time.Duration
}

func NewWriter(provider IProvider, model string, timeoutSeconds int) *Writer {
	return &Writer{
		provider: provider,
		model:    model,
		timeout:  time.Duration(timeoutSeconds) * time.Second,
	}
}

func (w *Writer) CoverLetter(ctx context.Context, profileText, jobTitle, company, jobDescription string) (string, error) {
	prompt := fmt.Sprintf(`You are a professional career writer.
Write a concise cover letter (under 350 words) for the job below, tailored to the candidate.
- Plain text, no placeholders like [Name].
- Do not invent experience the candidate does not list.
- Output ONLY the letter.

CANDIDATE:
%s

JOB: %s at %s
%s`, profileText, jobTitle, company, jobDescription)
	return w.generate(ctx, prompt)
}

func (w *Writer) InterviewPrep(ctx context.Context, profileText, jobTitle, company, jobDescription string) (string, error) {
	prompt := fmt.Sprintf(`You are an interview coach.
Produce interview preparation notes for the candidate and job below:
- 8-10 likely questions with brief suggested answer angles.
- A short list of topics to revise.
- Output markdown only.

CANDIDATE:
%s

JOB: %s at %s
%s`, profileText, jobTitle, company, jobDescription)
	return w.generate(ctx, prompt)
}

func (w *Writer) generate(ctx context.Context, prompt string) (string, error) {
	if w == nil || w.provider == nil {
		return "", ErrUnavailable
	}
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	resp, err := w.provider.Generate(ctx, w.model, prompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}
