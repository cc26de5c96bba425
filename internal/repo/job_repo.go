package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/jobscout/jobscout/internal/model"
	"github.com/jobscout/jobscout/internal/pkg/dbutil"
	appErr "github.com/jobscout/jobscout/internal/pkg/errors"
)

type JobRepo struct {
	db *sql.DB
}

func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{db: db}
}

// Upsert inserts the job or, when the URL is already known, refreshes its
// mutable fields. url, source and ctime never change after the first insert.
func (r *JobRepo) Upsert(ctx context.Context, job *model.Job) error {
	if job.URL == "" {
		return appErr.ErrInvalid
	}
	if job.ID == "" {
		job.ID = newID()
	}
	if job.Ctime == 0 {
		job.Ctime = time.Now().UnixMilli()
	}
	const query = `
		INSERT INTO jobs (id, url, title, company, location, description, salary, source, scraped_at, ctime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			description = EXCLUDED.description,
			salary = EXCLUDED.salary,
			scraped_at = EXCLUDED.scraped_at
		RETURNING id
	`
	row := r.db.QueryRowContext(ctx, query,
		job.ID, job.URL, job.Title, job.Company, job.Location,
		job.Description, job.Salary, job.Source, job.ScrapedAt, job.Ctime,
	)
	return row.Scan(&job.ID)
}

// UpdateEmbedding attaches the vector in a separate statement so a job row
// is queryable before its embedding lands.
func (r *JobRepo) UpdateEmbedding(ctx context.Context, url string, vec []float32) error {
	const query = `UPDATE jobs SET embedding = $1 WHERE url = $2`
	result, err := r.db.ExecContext(ctx, query, pgvector.NewVector(vec), url)
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

const jobColumns = `id, url, title, company, location, description, salary, source, scraped_at, ctime, embedding IS NOT NULL`

func scanJob(scanner interface{ Scan(...interface{}) error }) (model.Job, error) {
	var job model.Job
	err := scanner.Scan(
		&job.ID, &job.URL, &job.Title, &job.Company, &job.Location,
		&job.Description, &job.Salary, &job.Source, &job.ScrapedAt, &job.Ctime, &job.HasVector,
	)
	return job, err
}

// List returns jobs newest-first by scrape time.
func (r *JobRepo) List(ctx context.Context, limit, offset uint) ([]model.Job, error) {
	const query = `
		SELECT ` + jobColumns + `
		FROM jobs
		ORDER BY scraped_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	jobs := make([]model.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *JobRepo) GetByURL(ctx context.Context, url string) (*model.Job, error) {
	where := map[string]interface{}{
		"url": url,
	}
	sqlStr, args, err := builder.BuildSelect("jobs", where,
		[]string{"id", "url", "title", "company", "location", "description", "salary", "source", "scraped_at", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var job model.Job
	if err := row.Scan(
		&job.ID, &job.URL, &job.Title, &job.Company, &job.Location,
		&job.Description, &job.Salary, &job.Source, &job.ScrapedAt, &job.Ctime,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepo) Count(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM jobs")
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// FindSimilar ranks stored jobs by cosine distance to the query vector.
// Rows without an embedding never qualify.
func (r *JobRepo) FindSimilar(ctx context.Context, vec []float32, limit uint) ([]model.ScoredJob, error) {
	const query = `
		SELECT ` + jobColumns + `, 1 - (embedding <=> $1) AS similarity
		FROM jobs
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make([]model.ScoredJob, 0, limit)
	for rows.Next() {
		var item model.ScoredJob
		if err := rows.Scan(
			&item.ID, &item.URL, &item.Title, &item.Company, &item.Location,
			&item.Description, &item.Salary, &item.Source, &item.ScrapedAt, &item.Ctime,
			&item.HasVector, &item.Similarity,
		); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

// ListMissingEmbedding feeds the backfill job: rows whose embedding never
// landed, oldest scrape first.
func (r *JobRepo) ListMissingEmbedding(ctx context.Context, limit uint) ([]model.Job, error) {
	const query = `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE embedding IS NULL
		ORDER BY scraped_at ASC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	jobs := make([]model.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
