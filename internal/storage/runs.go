package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hoanghai1803/casescout/internal/models"
)

// CreateRun records an extraction run and returns its row ID.
func (s *Store) CreateRun(ctx context.Context, run *models.Run) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO extraction_runs
			(run_id, source_url, input_path, base_url, format, cases_found, new_cases, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, nullableString(run.SourceURL), nullableString(run.InputPath),
		run.BaseURL, run.Format, run.CasesFound, run.NewCases, nullableString(run.Error),
	)
	if err != nil {
		return 0, fmt.Errorf("creating run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting run id: %w", err)
	}
	return id, nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]models.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, source_url, input_path, base_url, format,
				cases_found, new_cases, error, created_at
		 FROM extraction_runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent runs: %w", err)
	}
	defer rows.Close()

	runs := []models.Run{}
	for rows.Next() {
		var (
			run       models.Run
			sourceURL sql.NullString
			inputPath sql.NullString
			runErr    sql.NullString
			createdAt string
		)
		if err := rows.Scan(
			&run.ID, &run.RunID, &sourceURL, &inputPath, &run.BaseURL, &run.Format,
			&run.CasesFound, &run.NewCases, &runErr, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		run.SourceURL = sourceURL.String
		run.InputPath = inputPath.String
		run.Error = runErr.String
		run.CreatedAt = parseTime(createdAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return runs, nil
}
