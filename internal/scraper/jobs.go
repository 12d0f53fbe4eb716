package scraper

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bookhub/pkg/models"
)

// JobsRepo tracks pipeline runs in the scrape_jobs table. Completion
// is observed by polling a job, never pushed.
type JobsRepo struct {
	DB *sql.DB
}

func NewJobsRepo(db *sql.DB) *JobsRepo {
	return &JobsRepo{DB: db}
}

func (r *JobsRepo) Start(ctx context.Context, targetType, targetURL string) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO scrape_jobs (id, target_url, target_type, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, targetURL, targetType, models.JobRunning, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("start job: %w", err)
	}
	return id, nil
}

func (r *JobsRepo) Finish(ctx context.Context, id string, runErr error) error {
	status := models.JobCompleted
	errorLog := ""
	if runErr != nil {
		status = models.JobFailed
		errorLog = runErr.Error()
	}

	_, err := r.DB.ExecContext(ctx, `
		UPDATE scrape_jobs
		SET status = ?, finished_at = ?, error_log = ?
		WHERE id = ?
	`, status, time.Now().UTC(), errorLog, id)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

func (r *JobsRepo) Get(ctx context.Context, id string) (*models.ScrapeJob, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, target_url, target_type, status, started_at, finished_at, error_log
		FROM scrape_jobs
		WHERE id = ?
	`, id)
	return scanJob(row)
}

func (r *JobsRepo) List(ctx context.Context, limit int) ([]models.ScrapeJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, target_url, target_type, status, started_at, finished_at, error_log
		FROM scrape_jobs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out := []models.ScrapeJob{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type jobScanner interface {
	Scan(dest ...any) error
}

func scanJob(row jobScanner) (*models.ScrapeJob, error) {
	var (
		j         models.ScrapeJob
		targetURL sql.NullString
		started   sql.NullTime
		finished  sql.NullTime
		errorLog  sql.NullString
	)
	if err := row.Scan(&j.ID, &targetURL, &j.TargetType, &j.Status, &started, &finished, &errorLog); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	j.TargetURL = targetURL.String
	j.StartedAt = started.Time
	if finished.Valid {
		j.FinishedAt = &finished.Time
	}
	j.ErrorLog = errorLog.String
	return &j, nil
}
