package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/user/flavourbook-go/apperror"
)

// fakeStore is an in-memory Store mirroring the postgres implementation's
// contract: owner scoping, NotFound for foreign rows, get-or-create tag
// references, and duplicate-name conflicts.
type fakeStore struct {
	nextFlavourID int64
	nextTagID     int64
	flavours      map[int64]*Flavour
	tags          map[int64]*Tag
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextFlavourID: 1,
		nextTagID:     1,
		flavours:      make(map[int64]*Flavour),
		tags:          make(map[int64]*Tag),
	}
}

func copyFlavour(f *Flavour) *Flavour {
	c := *f
	c.Tags = append([]Tag{}, f.Tags...)
	return &c
}

func (s *fakeStore) ListFlavours(_ context.Context, ownerID int64) ([]Flavour, error) {
	var out []Flavour
	for _, f := range s.flavours {
		if f.UserID == ownerID {
			out = append(out, *copyFlavour(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if out == nil {
		out = []Flavour{}
	}
	return out, nil
}

func (s *fakeStore) GetFlavour(_ context.Context, ownerID, id int64) (*Flavour, error) {
	f, ok := s.flavours[id]
	if !ok || f.UserID != ownerID {
		return nil, apperror.NewNotFoundError("flavour not found", nil)
	}
	return copyFlavour(f), nil
}

func (s *fakeStore) CreateFlavour(_ context.Context, flavour *Flavour, refs []TagRef) (*Flavour, error) {
	tags, err := s.resolveRefs(flavour.UserID, refs)
	if err != nil {
		return nil, err
	}
	f := *flavour
	f.ID = s.nextFlavourID
	s.nextFlavourID++
	f.Tags = tags
	s.flavours[f.ID] = &f
	return copyFlavour(&f), nil
}

func (s *fakeStore) UpdateFlavour(_ context.Context, ownerID, id int64, apply func(*Flavour) error, refs *[]TagRef) (*Flavour, error) {
	f, ok := s.flavours[id]
	if !ok || f.UserID != ownerID {
		return nil, apperror.NewNotFoundError("flavour not found", nil)
	}
	working := copyFlavour(f)
	if err := apply(working); err != nil {
		return nil, err
	}
	if refs != nil {
		tags, err := s.resolveRefs(ownerID, *refs)
		if err != nil {
			return nil, err
		}
		working.Tags = tags
	}
	s.flavours[id] = copyFlavour(working)
	return working, nil
}

func (s *fakeStore) DeleteFlavour(_ context.Context, ownerID, id int64) error {
	f, ok := s.flavours[id]
	if !ok || f.UserID != ownerID {
		return apperror.NewNotFoundError("flavour not found", nil)
	}
	delete(s.flavours, id)
	return nil
}

func (s *fakeStore) ListTags(_ context.Context, ownerID int64) ([]Tag, error) {
	tags := []Tag{}
	for _, t := range s.tags {
		if t.UserID == ownerID {
			tags = append(tags, *t)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name > tags[j].Name })
	return tags, nil
}

func (s *fakeStore) GetTag(_ context.Context, ownerID, id int64) (*Tag, error) {
	t, ok := s.tags[id]
	if !ok || t.UserID != ownerID {
		return nil, apperror.NewNotFoundError("tag not found", nil)
	}
	copied := *t
	return &copied, nil
}

func (s *fakeStore) CreateTag(_ context.Context, tag *Tag) (*Tag, error) {
	if s.findTag(tag.UserID, tag.Name) != nil {
		return nil, apperror.NewConflictError("a tag with this name already exists", nil)
	}
	t := *tag
	t.ID = s.nextTagID
	s.nextTagID++
	s.tags[t.ID] = &t
	copied := t
	return &copied, nil
}

func (s *fakeStore) UpdateTag(_ context.Context, ownerID, id int64, apply func(*Tag) error) (*Tag, error) {
	t, ok := s.tags[id]
	if !ok || t.UserID != ownerID {
		return nil, apperror.NewNotFoundError("tag not found", nil)
	}
	working := *t
	if err := apply(&working); err != nil {
		return nil, err
	}
	if existing := s.findTag(ownerID, working.Name); existing != nil && existing.ID != id {
		return nil, apperror.NewConflictError("a tag with this name already exists", nil)
	}
	s.tags[id] = &working
	copied := working
	return &copied, nil
}

func (s *fakeStore) DeleteTag(_ context.Context, ownerID, id int64) error {
	t, ok := s.tags[id]
	if !ok || t.UserID != ownerID {
		return apperror.NewNotFoundError("tag not found", nil)
	}
	delete(s.tags, id)
	return nil
}

func (s *fakeStore) findTag(ownerID int64, name string) *Tag {
	for _, t := range s.tags {
		if t.UserID == ownerID && t.Name == name {
			return t
		}
	}
	return nil
}

func (s *fakeStore) resolveRefs(ownerID int64, refs []TagRef) ([]Tag, error) {
	seen := make(map[int64]bool)
	tags := []Tag{}
	for _, ref := range refs {
		var resolved *Tag
		switch {
		case ref.ID != nil:
			t, ok := s.tags[*ref.ID]
			if !ok || t.UserID != ownerID {
				return nil, apperror.NewFieldValidationError("one or more tags could not be assigned", "tags")
			}
			resolved = t
		case ref.Name != nil && strings.TrimSpace(*ref.Name) != "":
			name := strings.TrimSpace(*ref.Name)
			resolved = s.findTag(ownerID, name)
			if resolved == nil {
				t := &Tag{ID: s.nextTagID, UserID: ownerID, Name: name}
				s.nextTagID++
				s.tags[t.ID] = t
				resolved = t
			}
		default:
			return nil, apperror.NewFieldValidationError("each tag must have an id or a non-empty name", "tags")
		}
		if !seen[resolved.ID] {
			seen[resolved.ID] = true
			tags = append(tags, *resolved)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

var _ Store = (*fakeStore)(nil)
