package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mediavault_backend/internal/profileimages/codec"
	"mediavault_backend/internal/profileimages/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	ownerHashIndex = "ux_profile_images_owner_hash"
)

const (
	ownerExistsQuery = `
		SELECT EXISTS (
			SELECT 1 FROM customers WHERE id = $1 AND type = $2
		)`

	countImagesQuery = `
		SELECT COUNT(*) FROM profile_images
		WHERE owner_type = $1 AND owner_id = $2`

	imageColumns = `id, owner_type, owner_id, base64_data, mime_type, original_file_name,
		content_bytes_size, content_hash_sha256, created_utc`

	listImagesQuery = `
		SELECT ` + imageColumns + `
		FROM profile_images
		WHERE owner_type = $1 AND owner_id = $2
		ORDER BY created_utc ASC, id ASC`

	listFingerprintsQuery = `
		SELECT content_hash_sha256 FROM profile_images
		WHERE owner_type = $1 AND owner_id = $2`

	findImageQuery = `
		SELECT ` + imageColumns + `
		FROM profile_images
		WHERE id = $1 AND owner_type = $2 AND owner_id = $3`

	insertImageQuery = `
		INSERT INTO profile_images (owner_type, owner_id, base64_data, mime_type, original_file_name,
			content_bytes_size, content_hash_sha256, created_utc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	deleteImageQuery = `
		DELETE FROM profile_images
		WHERE id = $1 AND owner_type = $2 AND owner_id = $3`
)

// Postgres implements Repository on a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed repository.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ Repository = (*Postgres)(nil)

func (r *Postgres) OwnerExists(ctx context.Context, owner domain.Owner) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, ownerExistsQuery, owner.ID, int16(owner.Type)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check owner exists: %w", err)
	}
	return exists, nil
}

func (r *Postgres) CountImages(ctx context.Context, owner domain.Owner) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, countImagesQuery, int16(owner.Type), owner.ID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count profile images: %w", err)
	}
	return count, nil
}

func (r *Postgres) ListImages(ctx context.Context, owner domain.Owner) ([]domain.Image, error) {
	rows, err := r.pool.Query(ctx, listImagesQuery, int16(owner.Type), owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list profile images: %w", err)
	}
	defer rows.Close()

	images := make([]domain.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile images: %w", err)
	}
	return images, nil
}

func (r *Postgres) ListFingerprints(ctx context.Context, owner domain.Owner) (map[codec.Fingerprint]struct{}, error) {
	rows, err := r.pool.Query(ctx, listFingerprintsQuery, int16(owner.Type), owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list fingerprints: %w", err)
	}
	defer rows.Close()

	set := make(map[codec.Fingerprint]struct{})
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		fp, err := codec.FingerprintFromBytes(raw)
		if err != nil {
			return nil, err
		}
		set[fp] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fingerprints: %w", err)
	}
	return set, nil
}

func (r *Postgres) FindImage(ctx context.Context, id int64, owner domain.Owner) (domain.Image, error) {
	img, err := scanImage(r.pool.QueryRow(ctx, findImageQuery, id, int16(owner.Type), owner.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Image{}, ErrImageNotFound
		}
		return domain.Image{}, fmt.Errorf("find profile image: %w", err)
	}
	return img, nil
}

// Begin starts a new unit of work. No connection is held until Commit.
func (r *Postgres) Begin() UnitOfWork {
	return &pgUnitOfWork{pool: r.pool}
}

type pgUnitOfWork struct {
	pool    *pgxpool.Pool
	inserts []domain.Image
	removes []domain.Image
}

func (u *pgUnitOfWork) InsertImages(images ...domain.Image) {
	u.inserts = append(u.inserts, images...)
}

func (u *pgUnitOfWork) RemoveImage(image domain.Image) {
	u.removes = append(u.removes, image)
}

func (u *pgUnitOfWork) Commit(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin profile image tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, img := range u.removes {
		if _, err := tx.Exec(ctx, deleteImageQuery, img.ID, int16(img.Owner.Type), img.Owner.ID); err != nil {
			return nil, mapWriteError("delete profile image", err)
		}
	}

	ids := make([]int64, 0, len(u.inserts))
	for _, img := range u.inserts {
		var id int64
		err := tx.QueryRow(ctx, insertImageQuery,
			int16(img.Owner.Type), img.Owner.ID, img.Payload, img.ContentType, img.FileName,
			img.SizeBytes, img.Fingerprint.Bytes(), img.CreatedAt,
		).Scan(&id)
		if err != nil {
			return nil, mapWriteError("insert profile image", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapWriteError("commit profile images", err)
	}

	u.inserts, u.removes = nil, nil
	return ids, nil
}

// mapWriteError turns constraint violations into gateway sentinels.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == ownerHashIndex:
			return fmt.Errorf("%s: %w", op, ErrDuplicateContent)
		case pgErr.Code == pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, ErrOwnerNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanImage(row pgx.Row) (domain.Image, error) {
	var (
		img       domain.Image
		ownerType int16
		hash      []byte
		createdAt time.Time
	)
	if err := row.Scan(
		&img.ID, &ownerType, &img.Owner.ID, &img.Payload, &img.ContentType, &img.FileName,
		&img.SizeBytes, &hash, &createdAt,
	); err != nil {
		return domain.Image{}, err
	}

	fp, err := codec.FingerprintFromBytes(hash)
	if err != nil {
		return domain.Image{}, err
	}
	img.Owner.Type = domain.OwnerType(ownerType)
	img.Fingerprint = fp
	img.CreatedAt = createdAt.UTC()
	return img, nil
}
