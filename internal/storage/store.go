// Package storage persists review records, the service's memory of which
// pull request revisions have already been reviewed. Records are append-only;
// eviction is left to the operator.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/pr-warden/internal/core"
)

// ErrNoReview is returned when a pull request has no recorded review yet.
var ErrNoReview = errors.New("no review recorded for pull request")

// Store defines the review record operations used by the orchestrator.
type Store interface {
	// SaveReview appends a new review record.
	SaveReview(ctx context.Context, record *core.ReviewRecord) error

	// GetLatestReviewForPR returns the most recent review record for a pull
	// request, or ErrNoReview if none exists.
	GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.ReviewRecord, error)
}

type sqliteStore struct {
	db *sqlx.DB
}

// NewStore creates a Store backed by the given sqlite connection.
func NewStore(db *sqlx.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) SaveReview(ctx context.Context, record *core.ReviewRecord) error {
	query := `INSERT INTO reviews (repo_full_name, pr_number, head_sha, review_content, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		record.RepoFullName, record.PRNumber, record.HeadSHA, record.ReviewContent, time.Now().UTC())
	return err
}

func (s *sqliteStore) GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.ReviewRecord, error) {
	query := `
		SELECT id, repo_full_name, pr_number, head_sha, review_content, created_at
		FROM reviews
		WHERE repo_full_name = ? AND pr_number = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, repoFullName, prNumber)

	var r core.ReviewRecord
	err := row.Scan(&r.ID, &r.RepoFullName, &r.PRNumber, &r.HeadSHA, &r.ReviewContent, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoReview
		}
		return nil, err
	}
	return &r, nil
}
