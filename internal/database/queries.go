package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docsum/internal/domain"

	"github.com/google/uuid"
)

func (d *Database) AddRun(ctx context.Context, run domain.Run) error {
	if run.Status == "" {
		return errors.New("run status is empty")
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `insert into runs (
		id, source, format, input_chars, input_tokens, chunks, cached,
		provider, model, status, duration_ms, error, created_at
	) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := d.db.ExecContext(ctx, query,
		run.ID,
		string(run.Source),
		string(run.Format),
		run.InputChars,
		run.InputTokens,
		run.Chunks,
		run.Cached,
		run.Provider,
		run.Model,
		string(run.Status),
		run.DurationMS,
		run.Error,
		run.CreatedAt.UnixMilli(),
	)

	return err
}

func (d *Database) RecentRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	query := `select id, source, format, input_chars, input_tokens, chunks, cached,
	provider, model, status, duration_ms, error, created_at
	from runs
	order by created_at desc
	limit ?`

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"limit", limit,
				"operation", "RecentRuns")
		}
	}()

	var runs []domain.Run
	for rows.Next() {
		var (
			r         domain.Run
			source    string
			format    string
			status    string
			createdAt int64
		)

		if err = rows.Scan(
			&r.ID,
			&source,
			&format,
			&r.InputChars,
			&r.InputTokens,
			&r.Chunks,
			&r.Cached,
			&r.Provider,
			&r.Model,
			&status,
			&r.DurationMS,
			&r.Error,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.Source = domain.Source(source)
		r.Format = domain.Format(format)
		r.Status = domain.RunStatus(status)
		r.CreatedAt = time.UnixMilli(createdAt).UTC()

		runs = append(runs, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return runs, nil
}

// Stats aggregates runs created at or after since.
func (d *Database) Stats(ctx context.Context, since time.Time) (*domain.RunStats, error) {
	query := `select count(*),
	coalesce(sum(case when status = ? then 1 else 0 end), 0),
	coalesce(sum(cached), 0),
	coalesce(avg(case when cached = 0 then duration_ms end), 0)
	from runs
	where created_at >= ?`

	stats := domain.RunStats{ByFormat: make(map[domain.Format]int64)}

	err := d.db.QueryRowContext(ctx, query, string(domain.RunStatusFailed), since.UnixMilli()).
		Scan(&stats.Total, &stats.Failed, &stats.Cached, &stats.AvgDurationMS)
	if err != nil {
		return nil, fmt.Errorf("failed to scan totals: %w", err)
	}

	formatQuery := `select format, count(*)
	from runs
	where created_at >= ?
	group by format`

	rows, err := d.db.QueryContext(ctx, formatQuery, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "Stats")
		}
	}()

	for rows.Next() {
		var (
			format string
			count  int64
		)
		if err = rows.Scan(&format, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		stats.ByFormat[domain.Format(format)] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return &stats, nil
}

// PruneRuns deletes runs created before cutoff and reports how many went.
func (d *Database) PruneRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	query := "delete from runs where created_at < ?"

	res, err := d.db.ExecContext(ctx, query, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
