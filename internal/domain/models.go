package domain

import (
	"context"
	"errors"
	"slices"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
)

// Interrupted reports whether err comes from a cancelled or expired context rather than
// from storage.
func Interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

type Deal struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Vendor        string     `json:"vendor"`
	Category      string     `json:"category"`
	OriginalPrice float64    `json:"originalPrice"`
	SalePrice     float64    `json:"salePrice"`
	Rating        float64    `json:"rating"`
	ReviewCount   int        `json:"reviewCount"`
	EndDate       time.Time  `json:"endDate"`
	Images        []string   `json:"images"`
	Tags          []string   `json:"tags"`
	Features      []string   `json:"features"`
	Featured      bool       `json:"featured"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// Clone returns a copy that shares no slices or pointers with d.
func (d Deal) Clone() Deal {
	d.Images = slices.Clone(d.Images)
	d.Tags = slices.Clone(d.Tags)
	d.Features = slices.Clone(d.Features)
	if d.CreatedAt != nil {
		t := *d.CreatedAt
		d.CreatedAt = &t
	}
	return d
}

// Validate enforces the price and rating rules applied when a deal is created or edited.
func (d Deal) Validate() error {
	switch {
	case d.Title == "":
		return errors.Join(ErrInvalid, errors.New("title is required"))
	case d.OriginalPrice < 0 || d.SalePrice < 0:
		return errors.Join(ErrInvalid, errors.New("prices must not be negative"))
	case d.SalePrice > d.OriginalPrice:
		return errors.Join(ErrInvalid, errors.New("sale price exceeds original price"))
	case d.Rating < 0 || d.Rating > 5:
		return errors.Join(ErrInvalid, errors.New("rating must be within 0-5"))
	case d.ReviewCount < 0:
		return errors.Join(ErrInvalid, errors.New("review count must not be negative"))
	}
	return nil
}

type Review struct {
	ID      int       `json:"id"`
	DealID  int       `json:"dealId"`
	Author  string    `json:"author"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

func (r Review) Clone() Review { return r }

func (r Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return errors.Join(ErrInvalid, errors.New("rating must be within 1-5"))
	}
	if r.Author == "" {
		return errors.Join(ErrInvalid, errors.New("author is required"))
	}
	return nil
}

// Tier is a licensing variant of a deal.
type Tier string

const (
	TierSingle   Tier = "single"
	TierTeam     Tier = "team"
	TierBusiness Tier = "business"
)

var Tiers = []Tier{TierSingle, TierTeam, TierBusiness}

// Multiplier is the price factor applied to a deal's prices for the tier.
func (t Tier) Multiplier() int {
	switch t {
	case TierTeam:
		return 3
	case TierBusiness:
		return 5
	default:
		return 1
	}
}

func (t Tier) Label() string {
	switch t {
	case TierTeam:
		return "Team License (5 users)"
	case TierBusiness:
		return "Business License (Unlimited)"
	default:
		return "Single License"
	}
}

func (t Tier) Valid() bool {
	return t == TierSingle || t == TierTeam || t == TierBusiness
}

type LineItem struct {
	DealID   int  `json:"dealId"`
	Quantity int  `json:"quantity"`
	Tier     Tier `json:"tier"`
}

// DealStatus reports how long a deal has left.
type DealStatus struct {
	Status  string `json:"status"` // ACTIVE | ENDING_SOON | EXPIRED
	Days    int    `json:"days"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Seconds int    `json:"seconds"`
}
