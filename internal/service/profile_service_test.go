package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jobscout/jobscout/internal/filestore"
	"github.com/jobscout/jobscout/internal/model"
	appErr "github.com/jobscout/jobscout/internal/pkg/errors"
)

type fakeProfileStore struct {
	profiles map[string]*model.Profile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[string]*model.Profile)}
}

func (f *fakeProfileStore) Get(ctx context.Context, userID string) (*model.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProfileStore) Upsert(ctx context.Context, p *model.Profile) error {
	clone := *p
	f.profiles[p.UserID] = &clone
	return nil
}

func (f *fakeProfileStore) UpdateResumeKey(ctx context.Context, userID, key string) error {
	p, ok := f.profiles[userID]
	if !ok {
		return appErr.ErrNotFound
	}
	p.ResumeKey = key
	return nil
}

type fakeFileStore struct {
	saved map[string]int64
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{saved: make(map[string]int64)}
}

func (f *fakeFileStore) Save(ctx context.Context, key string, r filestore.ReadSeekCloser, size int64) error {
	f.saved[key] = size
	return nil
}

func (f *fakeFileStore) Open(ctx context.Context, key string) (filestore.ReadSeekCloser, error) {
	return nil, appErr.ErrNotFound
}

type fakeLinkedFileStore struct {
	*fakeFileStore
}

func (f *fakeLinkedFileStore) URL(key string) string {
	return "https://files.example.com/" + key
}

type nopReadSeekCloser struct {
	*bytes.Reader
}

func (nopReadSeekCloser) Close() error { return nil }

func TestProfileGetReturnsEmptyForNewUser(t *testing.T) {
	svc := NewProfileService(newFakeProfileStore(), newFakeFileStore())
	p, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", p.UserID)
	require.Empty(t, p.Headline)
}

func TestProfileUpdatePreservesResumeKey(t *testing.T) {
	store := newFakeProfileStore()
	store.profiles["u1"] = &model.Profile{UserID: "u1", Headline: "old", ResumeKey: "resume_u1_x.pdf", Ctime: 111}
	svc := NewProfileService(store, newFakeFileStore())

	updated, err := svc.Update(context.Background(), "u1", &model.Profile{Headline: "  new headline  ", Skills: "go"})
	require.NoError(t, err)
	require.Equal(t, "new headline", updated.Headline)
	require.Equal(t, "resume_u1_x.pdf", updated.ResumeKey)
	require.Equal(t, int64(111), updated.Ctime)
}

func TestSaveResumeValidation(t *testing.T) {
	svc := NewProfileService(newFakeProfileStore(), newFakeFileStore())
	ctx := context.Background()
	reader := nopReadSeekCloser{bytes.NewReader([]byte("resume"))}

	_, err := svc.SaveResume(ctx, "u1", "resume.exe", reader, 6)
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = svc.SaveResume(ctx, "u1", "resume.pdf", reader, 0)
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = svc.SaveResume(ctx, "u1", "resume.pdf", reader, maxResumeSize+1)
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestSaveResumeRejectsMismatchedContent(t *testing.T) {
	svc := NewProfileService(newFakeProfileStore(), newFakeFileStore())
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 16)...)

	_, err := svc.SaveResume(context.Background(), "u1", "resume.pdf", nopReadSeekCloser{bytes.NewReader(png)}, int64(len(png)))
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestSaveResumeAcceptsPDFContent(t *testing.T) {
	files := newFakeFileStore()
	svc := NewProfileService(newFakeProfileStore(), files)
	pdf := []byte("%PDF-1.4 resume body")

	key, err := svc.SaveResume(context.Background(), "u1", "resume.pdf", nopReadSeekCloser{bytes.NewReader(pdf)}, int64(len(pdf)))
	require.NoError(t, err)
	require.Equal(t, int64(len(pdf)), files.saved[key])
}

func TestResumeURLUsesStoreLink(t *testing.T) {
	profiles := newFakeProfileStore()
	profiles.profiles["u1"] = &model.Profile{UserID: "u1", ResumeKey: "resume_u1_x.pdf"}
	profiles.profiles["u2"] = &model.Profile{UserID: "u2"}
	svc := NewProfileService(profiles, &fakeLinkedFileStore{newFakeFileStore()})

	link, err := svc.ResumeURL(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "https://files.example.com/resume_u1_x.pdf", link)

	_, err = svc.ResumeURL(context.Background(), "u2")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestResumeURLEmptyForStreamingStore(t *testing.T) {
	profiles := newFakeProfileStore()
	profiles.profiles["u1"] = &model.Profile{UserID: "u1", ResumeKey: "resume_u1_x.pdf"}
	svc := NewProfileService(profiles, newFakeFileStore())

	link, err := svc.ResumeURL(context.Background(), "u1")
	require.NoError(t, err)
	require.Empty(t, link)
}

func TestSaveResumeCreatesProfileOnTheFly(t *testing.T) {
	profiles := newFakeProfileStore()
	files := newFakeFileStore()
	svc := NewProfileService(profiles, files)

	key, err := svc.SaveResume(context.Background(), "u1", "resume.pdf", nopReadSeekCloser{bytes.NewReader([]byte("data"))}, 4)
	require.NoError(t, err)
	require.Contains(t, key, "resume_u1_")
	require.Equal(t, int64(4), files.saved[key])
	require.Equal(t, key, profiles.profiles["u1"].ResumeKey)
}

func TestSaveResumeUpdatesExistingProfile(t *testing.T) {
	profiles := newFakeProfileStore()
	profiles.profiles["u1"] = &model.Profile{UserID: "u1", Headline: "engineer"}
	svc := NewProfileService(profiles, newFakeFileStore())

	key, err := svc.SaveResume(context.Background(), "u1", "cv.docx", nopReadSeekCloser{bytes.NewReader([]byte("data"))}, 4)
	require.NoError(t, err)
	require.Equal(t, key, profiles.profiles["u1"].ResumeKey)
	require.Equal(t, "engineer", profiles.profiles["u1"].Headline)
}
