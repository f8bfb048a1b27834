package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ddj82/roomi/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrPhotoNotFound = errors.New("photo not found")
)

type DraftRepository interface {
	Create(ctx context.Context, draft *domain.RoomDraft) error
	Get(ctx context.Context, id string) (*domain.RoomDraft, error)
	Update(ctx context.Context, draft *domain.RoomDraft) error
	Delete(ctx context.Context, id string) error
	AddPhoto(ctx context.Context, draftID string, photo *domain.DraftPhoto) error
	RemovePhoto(ctx context.Context, draftID, photoID string) error
	ListPhotos(ctx context.Context, draftID string) ([]domain.DraftPhoto, error)
	DeleteExpiredBefore(ctx context.Context, deadline time.Time) (int64, error)
}

type PGDraftRepository struct {
	db *pgxpool.Pool
}

func NewDraftRepository(db *pgxpool.Pool) DraftRepository {
	return &PGDraftRepository{db: db}
}

// Create stores the draft and its photos in one transaction.
func (r *PGDraftRepository) Create(ctx context.Context, draft *domain.RoomDraft) error {
	listing, err := json.Marshal(draft.Listing)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO room_drafts (id, host_id, mode, room_id, listing, completed_steps)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		draft.ID, draft.HostID, draft.Mode, draft.RoomID, listing, stepsToText(draft.CompletedSteps)).
		Scan(&draft.CreatedAt, &draft.UpdatedAt); err != nil {
		return err
	}

	for i := range draft.Photos {
		if err := insertPhoto(ctx, tx, draft.ID, &draft.Photos[i]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGDraftRepository) Get(ctx context.Context, id string) (*domain.RoomDraft, error) {
	row := r.db.QueryRow(ctx, `SELECT id, host_id, mode, room_id, listing, completed_steps, created_at, updated_at FROM room_drafts WHERE id=$1`, id)

	var (
		d       domain.RoomDraft
		listing []byte
		steps   []string
	)
	if err := row.Scan(&d.ID, &d.HostID, &d.Mode, &d.RoomID, &listing, &steps, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(listing, &d.Listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	for _, s := range steps {
		d.CompletedSteps = append(d.CompletedSteps, domain.WizardStep(s))
	}

	photos, err := r.ListPhotos(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Photos = photos
	return &d, nil
}

func (r *PGDraftRepository) Update(ctx context.Context, draft *domain.RoomDraft) error {
	listing, err := json.Marshal(draft.Listing)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	err = r.db.QueryRow(ctx, `UPDATE room_drafts SET listing=$1, completed_steps=$2, updated_at=now() WHERE id=$3 RETURNING updated_at`,
		listing, stepsToText(draft.CompletedSteps), draft.ID).Scan(&draft.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDraftNotFound
	}
	return err
}

func (r *PGDraftRepository) Delete(ctx context.Context, id string) error {
	// photos go with the draft via ON DELETE CASCADE
	res, err := r.db.Exec(ctx, `DELETE FROM room_drafts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrDraftNotFound
	}
	return nil
}

func (r *PGDraftRepository) AddPhoto(ctx context.Context, draftID string, photo *domain.DraftPhoto) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM draft_photos WHERE draft_id=$1`, draftID).Scan(&photo.Position); err != nil {
		return err
	}
	if err := insertPhoto(ctx, tx, draftID, photo); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE room_drafts SET updated_at=now() WHERE id=$1`, draftID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGDraftRepository) RemovePhoto(ctx context.Context, draftID, photoID string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM draft_photos WHERE draft_id=$1 AND id=$2`, draftID, photoID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

func (r *PGDraftRepository) ListPhotos(ctx context.Context, draftID string) ([]domain.DraftPhoto, error) {
	rows, err := r.db.Query(ctx, `SELECT id, file_name, content_type, position, data, created_at FROM draft_photos WHERE draft_id=$1 ORDER BY position`, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make([]domain.DraftPhoto, 0)
	for rows.Next() {
		var p domain.DraftPhoto
		if err := rows.Scan(&p.ID, &p.FileName, &p.ContentType, &p.Position, &p.Data, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// DeleteExpiredBefore drops drafts nobody touched since deadline.
func (r *PGDraftRepository) DeleteExpiredBefore(ctx context.Context, deadline time.Time) (int64, error) {
	res, err := r.db.Exec(ctx, `DELETE FROM room_drafts WHERE updated_at <= $1`, deadline)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func insertPhoto(ctx context.Context, tx pgx.Tx, draftID string, p *domain.DraftPhoto) error {
	return tx.QueryRow(ctx, `INSERT INTO draft_photos (id, draft_id, file_name, content_type, position, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		p.ID, draftID, p.FileName, p.ContentType, p.Position, p.Data).Scan(&p.CreatedAt)
}

func stepsToText(steps []domain.WizardStep) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, string(s))
	}
	return out
}

var _ DraftRepository = (*PGDraftRepository)(nil)
