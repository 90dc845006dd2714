package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/user/flavourbook-go/apperror"
)

// maxPrice mirrors the numeric(5,2) column: two integer digits short of
// overflow, so the database never rejects a value the API accepted.
var maxPrice = decimal.RequireFromString("999.99")

// Service enforces the catalog's input rules on top of a Store. It never
// trusts the payload for ownership: the owner id always comes from the
// authenticated caller.
type Service struct {
	store Store
}

// NewService creates a new catalog Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListFlavours returns the caller's flavours, most recent first.
func (s *Service) ListFlavours(ctx context.Context, ownerID int64) ([]Flavour, error) {
	return s.store.ListFlavours(ctx, ownerID)
}

// GetFlavour returns one of the caller's flavours.
func (s *Service) GetFlavour(ctx context.Context, ownerID, id int64) (*Flavour, error) {
	return s.store.GetFlavour(ctx, ownerID, id)
}

// CreateFlavour creates a flavour owned by the caller. Title, time_minutes
// and price are mandatory; missing fields are reported together.
func (s *Service) CreateFlavour(ctx context.Context, ownerID int64, req *FlavourRequest) (*Flavour, error) {
	if err := requireFlavourFields(req); err != nil {
		return nil, err
	}
	if err := validateFlavourFields(req); err != nil {
		return nil, err
	}

	flavour := &Flavour{
		UserID:      ownerID,
		Title:       strings.TrimSpace(*req.Title),
		TimeMinutes: *req.TimeMinutes,
		Price:       *req.Price,
	}
	if req.Description != nil {
		flavour.Description = *req.Description
	}
	if req.Link != nil {
		flavour.Link = *req.Link
	}

	refs := req.Tags
	if refs == nil {
		refs = []TagRef{}
	}
	return s.store.CreateFlavour(ctx, flavour, refs)
}

// UpdateFlavour updates one of the caller's flavours. A full update requires
// the mandatory fields to be present; a partial update touches only the
// supplied ones. An absent tags field leaves the tag set alone; an empty
// tags array clears it.
func (s *Service) UpdateFlavour(ctx context.Context, ownerID, id int64, req *FlavourRequest, partial bool) (*Flavour, error) {
	if !partial {
		if err := requireFlavourFields(req); err != nil {
			return nil, err
		}
	}
	if err := validateFlavourFields(req); err != nil {
		return nil, err
	}

	var refs *[]TagRef
	if req.Tags != nil {
		refs = &req.Tags
	}

	return s.store.UpdateFlavour(ctx, ownerID, id, func(f *Flavour) error {
		if req.Title != nil {
			f.Title = strings.TrimSpace(*req.Title)
		}
		if req.TimeMinutes != nil {
			f.TimeMinutes = *req.TimeMinutes
		}
		if req.Price != nil {
			f.Price = *req.Price
		}
		if req.Description != nil {
			f.Description = *req.Description
		}
		if req.Link != nil {
			f.Link = *req.Link
		}
		return nil
	}, refs)
}

// DeleteFlavour deletes one of the caller's flavours.
func (s *Service) DeleteFlavour(ctx context.Context, ownerID, id int64) error {
	return s.store.DeleteFlavour(ctx, ownerID, id)
}

// ListTags returns the caller's tags ordered by name descending.
func (s *Service) ListTags(ctx context.Context, ownerID int64) ([]Tag, error) {
	return s.store.ListTags(ctx, ownerID)
}

// GetTag returns one of the caller's tags.
func (s *Service) GetTag(ctx context.Context, ownerID, id int64) (*Tag, error) {
	return s.store.GetTag(ctx, ownerID, id)
}

// CreateTag creates a tag owned by the caller.
func (s *Service) CreateTag(ctx context.Context, ownerID int64, req *TagRequest) (*Tag, error) {
	name, err := requireTagName(req)
	if err != nil {
		return nil, err
	}
	return s.store.CreateTag(ctx, &Tag{UserID: ownerID, Name: name})
}

// UpdateTag renames one of the caller's tags. The name is mandatory on both
// full and partial updates since it is the tag's only attribute.
func (s *Service) UpdateTag(ctx context.Context, ownerID, id int64, req *TagRequest) (*Tag, error) {
	name, err := requireTagName(req)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateTag(ctx, ownerID, id, func(t *Tag) error {
		t.Name = name
		return nil
	})
}

// DeleteTag deletes one of the caller's tags.
func (s *Service) DeleteTag(ctx context.Context, ownerID, id int64) error {
	return s.store.DeleteTag(ctx, ownerID, id)
}

// requireFlavourFields checks that the mandatory flavour fields are present,
// collecting every missing one into a single validation error.
func requireFlavourFields(req *FlavourRequest) error {
	var missing []string
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		missing = append(missing, "title")
	}
	if req.TimeMinutes == nil {
		missing = append(missing, "time_minutes")
	}
	if req.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return apperror.NewFieldValidationError("missing required fields", missing...)
	}
	return nil
}

// validateFlavourFields checks the format rules of whichever fields were
// supplied.
func validateFlavourFields(req *FlavourRequest) error {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return apperror.NewFieldValidationError("title must not be blank", "title")
	}
	if req.TimeMinutes != nil && *req.TimeMinutes < 0 {
		return apperror.NewFieldValidationError("time_minutes must not be negative", "time_minutes")
	}
	if req.Price != nil {
		p := *req.Price
		if p.IsNegative() {
			return apperror.NewFieldValidationError("price must not be negative", "price")
		}
		if !p.Equal(p.Truncate(2)) {
			return apperror.NewFieldValidationError("price allows at most two decimal places", "price")
		}
		if p.GreaterThan(maxPrice) {
			return apperror.NewFieldValidationError("price must not exceed 999.99", "price")
		}
	}
	return nil
}

func requireTagName(req *TagRequest) (string, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return "", apperror.NewFieldValidationError("name must not be blank", "name")
	}
	return strings.TrimSpace(*req.Name), nil
}
