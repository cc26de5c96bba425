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

type ScrapeRepo struct {
	db *sql.DB
}

func NewScrapeRepo(db *sql.DB) *ScrapeRepo {
	return &ScrapeRepo{db: db}
}

func (r *ScrapeRepo) Create(ctx context.Context, req *model.ScrapeRequest) error {
	if req.ID == "" {
		req.ID = newID()
	}
	now := time.Now().UnixMilli()
	req.Ctime = now
	req.Mtime = now
	if req.Status == "" {
		req.Status = model.ScrapeStatusRequested
	}
	data := map[string]interface{}{
		"id":       req.ID,
		"user_id":  req.UserID,
		"source":   req.Source,
		"query":    req.Query,
		"location": req.Location,
		"notify":   req.Notify,
		"status":   req.Status,
		"found":    req.Found,
		"error":    req.Error,
		"ctime":    req.Ctime,
		"mtime":    req.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("scrape_requests", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

// UpdateStatus moves a request through its status machine; found and errMsg
// only matter for the terminal states.
func (r *ScrapeRepo) UpdateStatus(ctx context.Context, id, status string, found int, errMsg string) error {
	where := map[string]interface{}{
		"id": id,
	}
	update := map[string]interface{}{
		"status": status,
		"found":  found,
		"error":  errMsg,
		"mtime":  time.Now().UnixMilli(),
	}
	sqlStr, args, err := builder.BuildUpdate("scrape_requests", where, update)
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

func (r *ScrapeRepo) GetByID(ctx context.Context, id string) (*model.ScrapeRequest, error) {
	where := map[string]interface{}{
		"id": id,
	}
	sqlStr, args, err := builder.BuildSelect("scrape_requests", where,
		[]string{"id", "user_id", "source", "query", "location", "notify", "status", "found", "error", "ctime", "mtime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var req model.ScrapeRequest
	if err := row.Scan(
		&req.ID, &req.UserID, &req.Source, &req.Query, &req.Location,
		&req.Notify, &req.Status, &req.Found, &req.Error, &req.Ctime, &req.Mtime,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *ScrapeRepo) ListByUser(ctx context.Context, userID string, limit uint) ([]model.ScrapeRequest, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc",
		"_limit":   []uint{0, limit},
	}
	sqlStr, args, err := builder.BuildSelect("scrape_requests", where,
		[]string{"id", "user_id", "source", "query", "location", "notify", "status", "found", "error", "ctime", "mtime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	requests := make([]model.ScrapeRequest, 0)
	for rows.Next() {
		var req model.ScrapeRequest
		if err := rows.Scan(
			&req.ID, &req.UserID, &req.Source, &req.Query, &req.Location,
			&req.Notify, &req.Status, &req.Found, &req.Error, &req.Ctime, &req.Mtime,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
