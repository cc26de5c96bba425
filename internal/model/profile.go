package model

// Profile holds the text a user's match embedding is derived from.
// ResumeKey points into the file store; the text fields are what get
// embedded, not the résumé binary.
type Profile struct {
	UserID    string `json:"user_id"`
	Headline  string `json:"headline"`
	Skills    string `json:"skills"`
	Locations string `json:"locations"`
	Summary   string `json:"summary"`
	ResumeKey string `json:"resume_key,omitempty"`
	Ctime     int64  `json:"ctime"`
	Mtime     int64  `json:"mtime"`
}

// MatchText builds the phrase fed to the embedding model for
// profile-based matching.
func (p *Profile) MatchText() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.Headline, p.Skills, p.Locations, p.Summary} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	text := parts[0]
	for _, s := range parts[1:] {
		text += "\n" + s
	}
	return text
}
