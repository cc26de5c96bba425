package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/jobscout/jobscout/internal/filestore"
	"github.com/jobscout/jobscout/internal/model"
	appErr "github.com/jobscout/jobscout/internal/pkg/errors"
)

const maxResumeSize = 8 << 20 // 8 MiB

var resumeExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

// .doc/.docx sniff as zip or plain octet-stream, pdf as application/pdf.
var resumeContentTypes = map[string]bool{
	"application/pdf":          true,
	"application/zip":          true,
	"application/octet-stream": true,
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Upsert(ctx context.Context, p *model.Profile) error
	UpdateResumeKey(ctx context.Context, userID, key string) error
}

type ProfileService struct {
	profiles profileStore
	files    filestore.Store
}

func NewProfileService(profiles profileStore, files filestore.Store) *ProfileService {
	return &ProfileService{profiles: profiles, files: files}
}

// Get returns the user's profile, or an empty one if nothing was saved
// yet. Matching treats the two the same.
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return &model.Profile{UserID: userID}, nil
		}
		return nil, err
	}
	return p, nil
}

// Update replaces the profile text fields. The resume key is managed
// through SaveResume and survives a text update.
func (s *ProfileService) Update(ctx context.Context, userID string, p *model.Profile) (*model.Profile, error) {
	current, err := s.profiles.Get(ctx, userID)
	if err != nil && !appErr.IsNotFound(err) {
		return nil, err
	}
	next := &model.Profile{
		UserID:    userID,
		Headline:  strings.TrimSpace(p.Headline),
		Skills:    strings.TrimSpace(p.Skills),
		Locations: strings.TrimSpace(p.Locations),
		Summary:   strings.TrimSpace(p.Summary),
	}
	if current != nil {
		next.ResumeKey = current.ResumeKey
		next.Ctime = current.Ctime
	}
	if err := s.profiles.Upsert(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// SaveResume stores the uploaded file and records its key on the profile.
// A profile row is created on the fly for first-time uploaders.
func (s *ProfileService) SaveResume(ctx context.Context, userID, filename string, r filestore.ReadSeekCloser, size int64) (string, error) {
	if s.files == nil {
		return "", appErr.ErrInvalid
	}
	if size <= 0 || size > maxResumeSize {
		return "", appErr.ErrInvalid
	}
	ext := strings.ToLower(path.Ext(filename))
	if !resumeExtensions[ext] {
		return "", appErr.ErrInvalid
	}
	ctype, err := sniffContentType(r)
	if err != nil {
		return "", err
	}
	if !allowedResumeType(ctype) {
		return "", appErr.ErrInvalid
	}
	// Keys are flat: the local store rejects path separators.
	key := fmt.Sprintf("resume_%s_%s%s", userID, randomHex(8), ext)
	if err := s.files.Save(ctx, key, r, size); err != nil {
		return "", err
	}
	if err := s.profiles.UpdateResumeKey(ctx, userID, key); err != nil {
		if !appErr.IsNotFound(err) {
			return "", err
		}
		p := &model.Profile{UserID: userID, ResumeKey: key}
		if err := s.profiles.Upsert(ctx, p); err != nil {
			return "", err
		}
	}
	return key, nil
}

// OpenResume streams a previously uploaded résumé back to its owner.
func (s *ProfileService) OpenResume(ctx context.Context, userID string) (filestore.ReadSeekCloser, string, error) {
	if s.files == nil {
		return nil, "", appErr.ErrNotFound
	}
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if p.ResumeKey == "" {
		return nil, "", appErr.ErrNotFound
	}
	rc, err := s.files.Open(ctx, p.ResumeKey)
	if err != nil {
		return nil, "", err
	}
	return rc, path.Base(p.ResumeKey), nil
}

// ResumeURL returns a direct download link when the backing store serves
// objects from a public URL. Empty means the caller should stream instead.
func (s *ProfileService) ResumeURL(ctx context.Context, userID string) (string, error) {
	provider, ok := s.files.(filestore.URLProvider)
	if !ok {
		return "", nil
	}
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if p.ResumeKey == "" {
		return "", appErr.ErrNotFound
	}
	return provider.URL(p.ResumeKey), nil
}

func sniffContentType(r filestore.ReadSeekCloser) (string, error) {
	buf := make([]byte, 512)
	n, err := r.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// The sniffed type has to look like a document; the extension alone is
// trivial to fake.
func allowedResumeType(ctype string) bool {
	if i := strings.Index(ctype, ";"); i >= 0 {
		ctype = ctype[:i]
	}
	ctype = strings.TrimSpace(ctype)
	if strings.HasPrefix(ctype, "text/") {
		return true
	}
	return resumeContentTypes[ctype]
}

func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
