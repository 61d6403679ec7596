package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"thumbgen/internal/domain"
	"thumbgen/internal/infra"
	"thumbgen/internal/sqlinline"
)

// ThumbnailRepositoryPG implements domain.ThumbnailRepository on PostgreSQL.
// Reads and deletes carry the owner in the WHERE clause.
type ThumbnailRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewThumbnailRepository constructs a thumbnail repository.
func NewThumbnailRepository(sql infra.SQLExecutor) *ThumbnailRepositoryPG {
	return &ThumbnailRepositoryPG{sql: sql}
}

// Create inserts a record in the generating state.
func (r *ThumbnailRepositoryPG) Create(ctx context.Context, thumb *domain.Thumbnail) (*domain.Thumbnail, error) {
	if thumb == nil {
		return nil, fmt.Errorf("%w: thumbnail is nil", domain.ErrValidation)
	}
	if !validUUID(thumb.UserID) {
		return nil, fmt.Errorf("%w: invalid owner id", domain.ErrValidation)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertThumbnail,
		thumb.UserID,
		thumb.Title,
		string(thumb.Style),
		string(thumb.AspectRatio),
		string(thumb.ColorScheme),
		thumb.UserPrompt,
		thumb.TextOverlay,
		thumb.PromptUsed,
	)
	created, err := scanThumbnail(row)
	if err != nil {
		return nil, fmt.Errorf("%w: insert thumbnail: %v", domain.ErrPersistence, err)
	}
	return created, nil
}

// AttachResult completes a record with its stored image.
func (r *ThumbnailRepositoryPG) AttachResult(ctx context.Context, id, imageURL, imageKey string) (*domain.Thumbnail, error) {
	if !validUUID(id) {
		return nil, domain.ErrNotFound
	}
	thumb, err := scanThumbnail(r.sql.QueryRow(ctx, sqlinline.QAttachThumbnailResult, id, imageURL, imageKey))
	if err != nil {
		return nil, classify("attach thumbnail result", err)
	}
	return thumb, nil
}

// ListByOwner returns the owner's thumbnails, newest first.
func (r *ThumbnailRepositoryPG) ListByOwner(ctx context.Context, userID string) ([]domain.Thumbnail, error) {
	if !validUUID(userID) {
		return []domain.Thumbnail{}, nil
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListThumbnailsByOwner, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list thumbnails: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	thumbs := make([]domain.Thumbnail, 0)
	for rows.Next() {
		thumb, err := scanThumbnail(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan thumbnail: %v", domain.ErrPersistence, err)
		}
		thumbs = append(thumbs, *thumb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list thumbnails: %v", domain.ErrPersistence, err)
	}
	return thumbs, nil
}

// GetByIDForOwner returns ErrNotFound when the record is absent or owned by
// someone else.
func (r *ThumbnailRepositoryPG) GetByIDForOwner(ctx context.Context, id, userID string) (*domain.Thumbnail, error) {
	if !validUUID(id) || !validUUID(userID) {
		return nil, domain.ErrNotFound
	}
	thumb, err := scanThumbnail(r.sql.QueryRow(ctx, sqlinline.QSelectThumbnailForOwner, id, userID))
	if err != nil {
		return nil, classify("get thumbnail", err)
	}
	return thumb, nil
}

// DeleteByIDForOwner removes the record and returns it so the caller can clean
// up the stored object.
func (r *ThumbnailRepositoryPG) DeleteByIDForOwner(ctx context.Context, id, userID string) (*domain.Thumbnail, error) {
	if !validUUID(id) || !validUUID(userID) {
		return nil, domain.ErrNotFound
	}
	thumb, err := scanThumbnail(r.sql.QueryRow(ctx, sqlinline.QDeleteThumbnailForOwner, id, userID))
	if err != nil {
		return nil, classify("delete thumbnail", err)
	}
	return thumb, nil
}

// MarkFailed ends generation without an image. Completed records are left alone.
func (r *ThumbnailRepositoryPG) MarkFailed(ctx context.Context, id, reason string) error {
	if !validUUID(id) {
		return domain.ErrNotFound
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QMarkThumbnailFailed, id, reason); err != nil {
		return fmt.Errorf("%w: mark thumbnail failed: %v", domain.ErrPersistence, err)
	}
	return nil
}

// FailStale marks every record still generating since before createdBefore as failed.
func (r *ThumbnailRepositoryPG) FailStale(ctx context.Context, createdBefore time.Time, reason string) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QFailStaleThumbnails, createdBefore, reason)
	if err != nil {
		return 0, fmt.Errorf("%w: fail stale thumbnails: %v", domain.ErrPersistence, err)
	}
	return tag.RowsAffected(), nil
}

func scanThumbnail(row pgx.Row) (*domain.Thumbnail, error) {
	var t domain.Thumbnail
	var style, aspect, colorScheme string
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&style,
		&aspect,
		&colorScheme,
		&t.UserPrompt,
		&t.TextOverlay,
		&t.PromptUsed,
		&t.ImageURL,
		&t.ImageKey,
		&t.IsGenerating,
		&t.FailureReason,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Style = domain.Style(style)
	t.AspectRatio = domain.AspectRatio(aspect)
	t.ColorScheme = domain.ColorScheme(colorScheme)
	return &t, nil
}

func classify(op string, err error) error {
	if infra.IsNoRows(err) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrPersistence, op, err)
}

func validUUID(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil
}

var _ domain.ThumbnailRepository = (*ThumbnailRepositoryPG)(nil)
