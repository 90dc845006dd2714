package catalog

import "context"

// Store is the persistence boundary for the owner-scoped catalog. Every
// method takes the owner explicitly — there is no implicit "current user" —
// so the scoping rules stay testable without a request harness.
//
// Implementations must guarantee that the ownership check and the mutation of
// a write operation are evaluated against the same consistent snapshot (one
// transaction per call), and must return apperror types: NotFoundError for
// absent or foreign-owned rows, ValidationError for unresolvable tag
// references, ConflictError for duplicate tag names, DatabaseError otherwise.
type Store interface {
	// ListFlavours returns the owner's flavours, most recent first
	// (descending id), with their tags attached.
	ListFlavours(ctx context.Context, ownerID int64) ([]Flavour, error)
	// GetFlavour returns the flavour only if it is owned by ownerID.
	GetFlavour(ctx context.Context, ownerID, id int64) (*Flavour, error)
	// CreateFlavour inserts the flavour (whose UserID is already set to the
	// caller) and resolves refs against the same owner: id refs must match an
	// owned tag, name refs are get-or-create under (owner, name).
	CreateFlavour(ctx context.Context, flavour *Flavour, refs []TagRef) (*Flavour, error)
	// UpdateFlavour loads the owner-scoped flavour for update, applies the
	// caller's merge function, persists the result, and replaces the tag set
	// when refs is non-nil. A nil refs leaves the tag set untouched.
	UpdateFlavour(ctx context.Context, ownerID, id int64, apply func(*Flavour) error, refs *[]TagRef) (*Flavour, error)
	// DeleteFlavour deletes the owner-scoped flavour or reports NotFound.
	DeleteFlavour(ctx context.Context, ownerID, id int64) error

	// ListTags returns the owner's tags ordered by name descending.
	ListTags(ctx context.Context, ownerID int64) ([]Tag, error)
	// GetTag returns the tag only if it is owned by ownerID.
	GetTag(ctx context.Context, ownerID, id int64) (*Tag, error)
	// CreateTag inserts the tag (UserID already set to the caller).
	CreateTag(ctx context.Context, tag *Tag) (*Tag, error)
	// UpdateTag loads the owner-scoped tag, applies the merge function, and
	// persists the result.
	UpdateTag(ctx context.Context, ownerID, id int64, apply func(*Tag) error) (*Tag, error)
	// DeleteTag deletes the owner-scoped tag or reports NotFound.
	DeleteTag(ctx context.Context, ownerID, id int64) error
}
