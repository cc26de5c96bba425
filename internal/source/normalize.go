package source

import (
	"strings"
	"time"

	"github.com/jobscout/jobscout/internal/model"
)

// Descriptions are truncated here so the stored text, not just the embedded
// text, stays inside the model input budget.
const maxDescriptionChars = 6000

// Normalize maps a raw source record into the canonical job shape. Pure:
// no I/O, no randomness; missing optional fields stay empty strings.
func Normalize(raw RawJob, sourceName string, now time.Time) model.Job {
	title := strings.TrimSpace(raw.Title)
	company := strings.TrimSpace(raw.Company)
	if company == "" {
		title, company = splitTitleCompany(title)
	}
	desc := strings.TrimSpace(raw.Description)
	if runes := []rune(desc); len(runes) > maxDescriptionChars {
		desc = string(runes[:maxDescriptionChars])
	}
	return model.Job{
		URL:         strings.TrimSpace(raw.URL),
		Title:       title,
		Company:     company,
		Location:    strings.TrimSpace(raw.Location),
		Description: desc,
		Salary:      strings.TrimSpace(raw.Salary),
		Source:      sourceName,
		ScrapedAt:   now.UnixMilli(),
	}
}

// splitTitleCompany handles sources that pack "Role at Company" into one
// string. Without the separator the whole string stays the title.
func splitTitleCompany(title string) (string, string) {
	idx := strings.LastIndex(title, " at ")
	if idx <= 0 {
		return title, ""
	}
	role := strings.TrimSpace(title[:idx])
	company := strings.TrimSpace(title[idx+len(" at "):])
	if role == "" || company == "" {
		return title, ""
	}
	return role, company
}

// EmbedText is the text a job's vector is computed from.
func EmbedText(job model.Job) string {
	parts := make([]string, 0, 4)
	for _, s := range []string{job.Title, job.Company, job.Location, job.Description} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
