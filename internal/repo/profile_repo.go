package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/jobscout/jobscout/internal/model"
	"github.com/jobscout/jobscout/internal/pkg/dbutil"
	appErr "github.com/jobscout/jobscout/internal/pkg/errors"
)

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (*model.Profile, error) {
	where := map[string]interface{}{
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildSelect("profiles", where,
		[]string{"user_id", "headline", "skills", "locations", "summary", "resume_key", "ctime", "mtime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var p model.Profile
	if err := row.Scan(&p.UserID, &p.Headline, &p.Skills, &p.Locations, &p.Summary, &p.ResumeKey, &p.Ctime, &p.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) Upsert(ctx context.Context, p *model.Profile) error {
	now := time.Now().UnixMilli()
	if p.Ctime == 0 {
		p.Ctime = now
	}
	p.Mtime = now
	const query = `
		INSERT INTO profiles (user_id, headline, skills, locations, summary, resume_key, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			headline = EXCLUDED.headline,
			skills = EXCLUDED.skills,
			locations = EXCLUDED.locations,
			summary = EXCLUDED.summary,
			resume_key = EXCLUDED.resume_key,
			mtime = EXCLUDED.mtime
	`
	_, err := r.db.ExecContext(ctx, query,
		p.UserID, p.Headline, p.Skills, p.Locations, p.Summary, p.ResumeKey, p.Ctime, p.Mtime)
	return err
}

func (r *ProfileRepo) UpdateResumeKey(ctx context.Context, userID, key string) error {
	where := map[string]interface{}{
		"user_id": userID,
	}
	update := map[string]interface{}{
		"resume_key": key,
		"mtime":      time.Now().UnixMilli(),
	}
	sqlStr, args, err := builder.BuildUpdate("profiles", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
