package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/flavourbook-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// PostgresStore is the pgx-backed Store implementation. Write operations run
// in a single transaction so the ownership check and the mutation see the
// same snapshot.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// inTx runs fn inside a transaction, committing on success and rolling back
// on error or panic.
func (s *PostgresStore) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			err = apperror.NewDatabaseError("failed to commit transaction", commitErr)
		}
	}()
	err = fn(tx)
	return err
}

const flavourColumns = `id, user_id, title, time_minutes, price, description, link`

func scanFlavour(row pgx.Row) (*Flavour, error) {
	var f Flavour
	err := row.Scan(&f.ID, &f.UserID, &f.Title, &f.TimeMinutes, &f.Price, &f.Description, &f.Link)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFlavours returns the owner's flavours ordered by descending id.
func (s *PostgresStore) ListFlavours(ctx context.Context, ownerID int64) ([]Flavour, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+flavourColumns+` FROM flavours WHERE user_id = $1 ORDER BY id DESC`, ownerID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list flavours", err)
	}
	defer rows.Close()

	var flavours []Flavour
	var ids []int64
	for rows.Next() {
		f, err := scanFlavour(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan flavour row", err)
		}
		flavours = append(flavours, *f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to iterate flavour rows", err)
	}

	tagsByFlavour, err := s.loadTags(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range flavours {
		flavours[i].Tags = tagsByFlavour[flavours[i].ID]
		if flavours[i].Tags == nil {
			flavours[i].Tags = []Tag{}
		}
	}
	return flavours, nil
}

// GetFlavour returns the flavour only when owned by ownerID; a foreign-owned
// id is reported exactly like an absent one.
func (s *PostgresStore) GetFlavour(ctx context.Context, ownerID, id int64) (*Flavour, error) {
	f, err := scanFlavour(s.db.QueryRow(ctx,
		`SELECT `+flavourColumns+` FROM flavours WHERE id = $1 AND user_id = $2`, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("flavour not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get flavour", err)
	}

	tagsByFlavour, err := s.loadTags(ctx, []int64{f.ID})
	if err != nil {
		return nil, err
	}
	f.Tags = tagsByFlavour[f.ID]
	if f.Tags == nil {
		f.Tags = []Tag{}
	}
	return f, nil
}

// CreateFlavour inserts the flavour and attaches its tags in one transaction.
func (s *PostgresStore) CreateFlavour(ctx context.Context, flavour *Flavour, refs []TagRef) (*Flavour, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO flavours (user_id, title, time_minutes, price, description, link)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			flavour.UserID, flavour.Title, flavour.TimeMinutes, flavour.Price, flavour.Description, flavour.Link,
		).Scan(&flavour.ID)
		if err != nil {
			return apperror.NewDatabaseError("failed to insert flavour", err)
		}

		tags, err := resolveTagRefs(ctx, tx, flavour.UserID, refs)
		if err != nil {
			return err
		}
		if err := attachTags(ctx, tx, flavour.ID, tags); err != nil {
			return err
		}
		flavour.Tags = tags
		return nil
	})
	if err != nil {
		return nil, err
	}
	return flavour, nil
}

// UpdateFlavour locks the owner-scoped row, applies the merge, and persists
// it. The SELECT ... FOR UPDATE and the UPDATE share one snapshot, so the
// ownership check cannot race with the write.
func (s *PostgresStore) UpdateFlavour(ctx context.Context, ownerID, id int64, apply func(*Flavour) error, refs *[]TagRef) (*Flavour, error) {
	var result *Flavour
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		f, err := scanFlavour(tx.QueryRow(ctx,
			`SELECT `+flavourColumns+` FROM flavours WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, ownerID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperror.NewNotFoundError("flavour not found", nil)
			}
			return apperror.NewDatabaseError("failed to load flavour for update", err)
		}

		tagsByFlavour, err := loadTagsTx(ctx, tx, []int64{f.ID})
		if err != nil {
			return err
		}
		f.Tags = tagsByFlavour[f.ID]
		if f.Tags == nil {
			f.Tags = []Tag{}
		}

		if err := apply(f); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE flavours SET title = $2, time_minutes = $3, price = $4, description = $5, link = $6
			 WHERE id = $1`,
			f.ID, f.Title, f.TimeMinutes, f.Price, f.Description, f.Link)
		if err != nil {
			return apperror.NewDatabaseError("failed to update flavour", err)
		}

		if refs != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM flavour_tags WHERE flavour_id = $1`, f.ID); err != nil {
				return apperror.NewDatabaseError("failed to clear flavour tags", err)
			}
			tags, err := resolveTagRefs(ctx, tx, ownerID, *refs)
			if err != nil {
				return err
			}
			if err := attachTags(ctx, tx, f.ID, tags); err != nil {
				return err
			}
			f.Tags = tags
		}

		result = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteFlavour deletes the owner-scoped flavour; the association rows go
// with it via ON DELETE CASCADE.
func (s *PostgresStore) DeleteFlavour(ctx context.Context, ownerID, id int64) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM flavours WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete flavour", err)
	}
	if ct.RowsAffected() == 0 {
		return apperror.NewNotFoundError("flavour not found", nil)
	}
	return nil
}

// ListTags returns the owner's tags ordered by name descending.
func (s *PostgresStore) ListTags(ctx context.Context, ownerID int64) ([]Tag, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, name FROM tags WHERE user_id = $1 ORDER BY name DESC`, ownerID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tags", err)
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan tag row", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to iterate tag rows", err)
	}
	return tags, nil
}

// GetTag returns the tag only when owned by ownerID.
func (s *PostgresStore) GetTag(ctx context.Context, ownerID, id int64) (*Tag, error) {
	var t Tag
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, name FROM tags WHERE id = $1 AND user_id = $2`, id, ownerID,
	).Scan(&t.ID, &t.UserID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("tag not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get tag", err)
	}
	return &t, nil
}

// CreateTag inserts a tag; a duplicate (owner, name) pair is a conflict.
func (s *PostgresStore) CreateTag(ctx context.Context, tag *Tag) (*Tag, error) {
	err := s.db.QueryRow(ctx,
		`INSERT INTO tags (user_id, name) VALUES ($1, $2) RETURNING id`, tag.UserID, tag.Name,
	).Scan(&tag.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.NewConflictError("a tag with this name already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create tag", err)
	}
	return tag, nil
}

// UpdateTag locks the owner-scoped tag, applies the merge, and persists it.
func (s *PostgresStore) UpdateTag(ctx context.Context, ownerID, id int64, apply func(*Tag) error) (*Tag, error) {
	var result *Tag
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var t Tag
		err := tx.QueryRow(ctx,
			`SELECT id, user_id, name FROM tags WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, ownerID,
		).Scan(&t.ID, &t.UserID, &t.Name)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperror.NewNotFoundError("tag not found", nil)
			}
			return apperror.NewDatabaseError("failed to load tag for update", err)
		}

		if err := apply(&t); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE tags SET name = $2 WHERE id = $1`, t.ID, t.Name); err != nil {
			if isUniqueViolation(err) {
				return apperror.NewConflictError("a tag with this name already exists", nil)
			}
			return apperror.NewDatabaseError("failed to update tag", err)
		}
		result = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTag deletes the owner-scoped tag; association rows cascade.
func (s *PostgresStore) DeleteTag(ctx context.Context, ownerID, id int64) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM tags WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete tag", err)
	}
	if ct.RowsAffected() == 0 {
		return apperror.NewNotFoundError("tag not found", nil)
	}
	return nil
}

// loadTags fetches the tags for a batch of flavours keyed by flavour id.
func (s *PostgresStore) loadTags(ctx context.Context, flavourIDs []int64) (map[int64][]Tag, error) {
	if len(flavourIDs) == 0 {
		return map[int64][]Tag{}, nil
	}
	rows, err := s.db.Query(ctx, tagJoinQuery, flavourIDs)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to load flavour tags", err)
	}
	return collectTagRows(rows)
}

const tagJoinQuery = `
	SELECT ft.flavour_id, t.id, t.user_id, t.name
	FROM flavour_tags ft
	JOIN tags t ON t.id = ft.tag_id
	WHERE ft.flavour_id = ANY($1)
	ORDER BY t.name`

func loadTagsTx(ctx context.Context, tx pgx.Tx, flavourIDs []int64) (map[int64][]Tag, error) {
	if len(flavourIDs) == 0 {
		return map[int64][]Tag{}, nil
	}
	rows, err := tx.Query(ctx, tagJoinQuery, flavourIDs)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to load flavour tags", err)
	}
	return collectTagRows(rows)
}

func collectTagRows(rows pgx.Rows) (map[int64][]Tag, error) {
	defer rows.Close()
	byFlavour := make(map[int64][]Tag)
	for rows.Next() {
		var flavourID int64
		var t Tag
		if err := rows.Scan(&flavourID, &t.ID, &t.UserID, &t.Name); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan flavour tag row", err)
		}
		byFlavour[flavourID] = append(byFlavour[flavourID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to iterate flavour tag rows", err)
	}
	return byFlavour, nil
}

// resolveTagRefs turns tag references into concrete owner-scoped tags. An id
// ref that does not resolve to a tag owned by ownerID is rejected as invalid
// input on the tags field; a name ref is an upsert on (user_id, name), so the
// unique index makes concurrent get-or-create race-free.
func resolveTagRefs(ctx context.Context, tx pgx.Tx, ownerID int64, refs []TagRef) ([]Tag, error) {
	seen := make(map[int64]bool)
	tags := []Tag{}
	for _, ref := range refs {
		var t Tag
		switch {
		case ref.ID != nil:
			err := tx.QueryRow(ctx,
				`SELECT id, user_id, name FROM tags WHERE id = $1 AND user_id = $2`, *ref.ID, ownerID,
			).Scan(&t.ID, &t.UserID, &t.Name)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, apperror.NewFieldValidationError("one or more tags could not be assigned", "tags")
				}
				return nil, apperror.NewDatabaseError("failed to resolve tag reference", err)
			}
		case ref.Name != nil && strings.TrimSpace(*ref.Name) != "":
			name := strings.TrimSpace(*ref.Name)
			err := tx.QueryRow(ctx,
				`INSERT INTO tags (user_id, name) VALUES ($1, $2)
				 ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
				 RETURNING id, user_id, name`, ownerID, name,
			).Scan(&t.ID, &t.UserID, &t.Name)
			if err != nil {
				return nil, apperror.NewDatabaseError("failed to get or create tag", err)
			}
		default:
			return nil, apperror.NewFieldValidationError("each tag must have an id or a non-empty name", "tags")
		}
		if !seen[t.ID] {
			seen[t.ID] = true
			tags = append(tags, t)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func attachTags(ctx context.Context, tx pgx.Tx, flavourID int64, tags []Tag) error {
	for _, t := range tags {
		_, err := tx.Exec(ctx,
			`INSERT INTO flavour_tags (flavour_id, tag_id) VALUES ($1, $2)
			 ON CONFLICT (flavour_id, tag_id) DO NOTHING`, flavourID, t.ID)
		if err != nil {
			return apperror.NewDatabaseError("failed to attach tag to flavour", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

var _ Store = (*PostgresStore)(nil)
