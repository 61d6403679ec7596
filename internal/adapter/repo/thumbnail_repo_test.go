package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"thumbgen/internal/domain"
	"thumbgen/internal/sqlinline"
)

const (
	ownerID = "5b0e7a4e-3f63-4f0c-9a43-2f0c1f1f9a01"
	otherID = "c9d0f1b2-1d7e-4b2a-8f55-7b7c0d3e4a02"
	thumbID = "1f2e3d4c-5b6a-4798-8a7b-6c5d4e3f2a10"
)

var created = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func thumbnailValues(id, owner, aspect, imageURL string, generating bool, at time.Time) []any {
	return []any{
		id, owner, "Launch day", "Minimalist", aspect, "pastel", "", false,
		"create a minimalist thumbnail", imageURL, "", generating, "", at, at,
	}
}

func TestThumbnailCreateReturnsStoredRow(t *testing.T) {
	exec := &scriptedExecutor{row: [][]any{thumbnailValues(thumbID, ownerID, "9:16", "", true, created)}}
	repo := NewThumbnailRepository(exec)

	got, err := repo.Create(context.Background(), &domain.Thumbnail{
		UserID:      ownerID,
		Title:       "Launch day",
		Style:       domain.StyleMinimalist,
		AspectRatio: domain.AspectRatioPortrait,
		ColorScheme: domain.ColorSchemePastel,
		PromptUsed:  "create a minimalist thumbnail",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if got.ID != thumbID || !got.IsGenerating || got.ImageURL != "" {
		t.Fatalf("Create() = %+v, want generating record %s", got, thumbID)
	}
	if got.AspectRatio != domain.AspectRatioPortrait {
		t.Fatalf("AspectRatio = %q, want 9:16", got.AspectRatio)
	}
	if exec.calls[0].query != sqlinline.QInsertThumbnail {
		t.Fatalf("unexpected query issued")
	}
	if exec.calls[0].args[2] != "Minimalist" || exec.calls[0].args[3] != "9:16" {
		t.Fatalf("args = %#v", exec.calls[0].args)
	}
}

func TestThumbnailCreateRejectsMalformedOwner(t *testing.T) {
	exec := &scriptedExecutor{}
	repo := NewThumbnailRepository(exec)
	_, err := repo.Create(context.Background(), &domain.Thumbnail{UserID: "nope"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}
	if len(exec.calls) != 0 {
		t.Fatalf("expected no queries, got %d", len(exec.calls))
	}
}

func TestThumbnailListByOwnerScopesQuery(t *testing.T) {
	newer := created.Add(time.Minute)
	exec := &scriptedExecutor{rows: [][]any{
		thumbnailValues("aaaaaaaa-0000-4000-8000-000000000002", ownerID, "16:9", "https://cdn/x.png", false, newer),
		thumbnailValues("aaaaaaaa-0000-4000-8000-000000000001", ownerID, "1:1", "https://cdn/y.png", false, created),
	}}
	repo := NewThumbnailRepository(exec)

	got, err := repo.ListByOwner(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("ListByOwner() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByOwner() returned %d rows, want 2", len(got))
	}
	if !got[0].CreatedAt.After(got[1].CreatedAt) {
		t.Fatalf("rows not newest first: %v then %v", got[0].CreatedAt, got[1].CreatedAt)
	}
	for _, th := range got {
		if th.UserID != ownerID {
			t.Fatalf("row for %s leaked into owner listing", th.UserID)
		}
	}
	if exec.calls[0].query != sqlinline.QListThumbnailsByOwner || exec.calls[0].args[0] != ownerID {
		t.Fatalf("query not scoped to owner: %#v", exec.calls[0].args)
	}
}

func TestThumbnailListByOwnerEmpty(t *testing.T) {
	repo := NewThumbnailRepository(&scriptedExecutor{})
	got, err := repo.ListByOwner(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("ListByOwner() error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("ListByOwner() = %#v, want empty non-nil slice", got)
	}
}

func TestThumbnailNotFoundMapping(t *testing.T) {
	tests := []struct {
		name string
		run  func(r *ThumbnailRepositoryPG) error
	}{
		{"get missing", func(r *ThumbnailRepositoryPG) error {
			_, err := r.GetByIDForOwner(context.Background(), thumbID, ownerID)
			return err
		}},
		{"get malformed id", func(r *ThumbnailRepositoryPG) error {
			_, err := r.GetByIDForOwner(context.Background(), "not-a-uuid", ownerID)
			return err
		}},
		{"delete other owner", func(r *ThumbnailRepositoryPG) error {
			_, err := r.DeleteByIDForOwner(context.Background(), thumbID, otherID)
			return err
		}},
		{"attach missing", func(r *ThumbnailRepositoryPG) error {
			_, err := r.AttachResult(context.Background(), thumbID, "https://cdn/x.png", "k")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(NewThumbnailRepository(&scriptedExecutor{}))
			if !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestThumbnailDeleteScopesToOwner(t *testing.T) {
	exec := &scriptedExecutor{row: [][]any{thumbnailValues(thumbID, ownerID, "16:9", "https://cdn/x.png", false, created)}}
	repo := NewThumbnailRepository(exec)

	got, err := repo.DeleteByIDForOwner(context.Background(), thumbID, ownerID)
	if err != nil {
		t.Fatalf("DeleteByIDForOwner() error: %v", err)
	}
	if got.ID != thumbID {
		t.Fatalf("deleted id = %q, want %q", got.ID, thumbID)
	}
	args := exec.calls[0].args
	if exec.calls[0].query != sqlinline.QDeleteThumbnailForOwner || args[0] != thumbID || args[1] != ownerID {
		t.Fatalf("delete not scoped: %#v", args)
	}
}

func TestThumbnailAttachResultTwice(t *testing.T) {
	done := thumbnailValues(thumbID, ownerID, "16:9", "https://cdn/x.png", false, created)
	exec := &scriptedExecutor{row: [][]any{done, done}}
	repo := NewThumbnailRepository(exec)

	first, err := repo.AttachResult(context.Background(), thumbID, "https://cdn/x.png", "thumbnails/x.png")
	if err != nil {
		t.Fatalf("AttachResult() error: %v", err)
	}
	second, err := repo.AttachResult(context.Background(), thumbID, "https://cdn/x.png", "thumbnails/x.png")
	if err != nil {
		t.Fatalf("AttachResult() second error: %v", err)
	}
	if *first != *second {
		t.Fatalf("AttachResult() not idempotent: %+v vs %+v", first, second)
	}
	if second.IsGenerating || second.ImageURL == "" {
		t.Fatalf("AttachResult() left record generating: %+v", second)
	}
}

func TestThumbnailPersistenceErrors(t *testing.T) {
	boom := errors.New("connection refused")
	repo := NewThumbnailRepository(&scriptedExecutor{rowErr: boom, err: boom})

	if _, err := repo.GetByIDForOwner(context.Background(), thumbID, ownerID); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("GetByIDForOwner() error = %v, want ErrPersistence", err)
	}
	if _, err := repo.ListByOwner(context.Background(), ownerID); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("ListByOwner() error = %v, want ErrPersistence", err)
	}
	if err := repo.MarkFailed(context.Background(), thumbID, "x"); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("MarkFailed() error = %v, want ErrPersistence", err)
	}
}

func TestThumbnailFailStale(t *testing.T) {
	exec := &scriptedExecutor{execTag: pgconn.NewCommandTag("UPDATE 3")}
	repo := NewThumbnailRepository(exec)
	cutoff := created.Add(-30 * time.Minute)

	n, err := repo.FailStale(context.Background(), cutoff, "generation timed out")
	if err != nil {
		t.Fatalf("FailStale() error: %v", err)
	}
	if n != 3 {
		t.Fatalf("FailStale() = %d, want 3", n)
	}
	if exec.calls[0].args[0] != cutoff {
		t.Fatalf("cutoff arg = %v, want %v", exec.calls[0].args[0], cutoff)
	}
}
