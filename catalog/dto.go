package catalog

import "github.com/shopspring/decimal"

// TagRef references a tag on a flavour payload: either an existing tag by id,
// which must resolve to a tag owned by the caller, or a name, which is
// get-or-create under the caller's (owner, name) key.
type TagRef struct {
	ID   *int64  `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}

// FlavourRequest carries flavour attributes for create and update. Pointer
// fields distinguish "not supplied" from "zero value" so the same shape
// serves POST, PUT and PATCH; presence of the mandatory fields (title,
// time_minutes, price) is enforced by the service per operation. These are
// exactly the client-mutable fields: ownership cannot be expressed here, and
// unknown payload keys such as "user" or "owner" are dropped at decode time.
type FlavourRequest struct {
	Title       *string          `json:"title,omitempty"`
	TimeMinutes *int             `json:"time_minutes,omitempty" validate:"omitempty,gte=0"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty"`
	Link        *string          `json:"link,omitempty" validate:"omitempty,url"`
	Tags        []TagRef         `json:"tags,omitempty"`
}

// TagRequest carries tag attributes for create and update.
type TagRequest struct {
	Name *string `json:"name,omitempty"`
}

// FlavourSummary is the list-endpoint shape: it omits the description.
type FlavourSummary struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link"`
	Tags        []Tag           `json:"tags"`
}

// FlavourDetail is the detail-endpoint shape, including the description.
type FlavourDetail struct {
	FlavourSummary
	Description string `json:"description"`
}

// NewFlavourSummary maps a Flavour to its summary shape.
func NewFlavourSummary(f *Flavour) FlavourSummary {
	tags := f.Tags
	if tags == nil {
		tags = []Tag{}
	}
	return FlavourSummary{
		ID:          f.ID,
		Title:       f.Title,
		TimeMinutes: f.TimeMinutes,
		Price:       f.Price,
		Link:        f.Link,
		Tags:        tags,
	}
}

// NewFlavourDetail maps a Flavour to its detail shape.
func NewFlavourDetail(f *Flavour) FlavourDetail {
	return FlavourDetail{
		FlavourSummary: NewFlavourSummary(f),
		Description:    f.Description,
	}
}
