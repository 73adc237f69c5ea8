package services

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"dealforge/internal/browse"
	"dealforge/internal/catalog"
	"dealforge/internal/domain"
)

type Query struct {
	Filter catalog.Filter
	Sort   catalog.SortKey
}

type BrowseResult struct {
	Query Query         `json:"-"`
	Deals []domain.Deal `json:"deals"`
	Total int           `json:"total"`
}

// MaxRecordedViews bounds how many sessions keep their latest browse view.
const MaxRecordedViews = 4096

// BrowseService runs the filter pipeline and remembers the latest view of recently
// active sessions.
type BrowseService struct {
	Deals *DealService
	Guard *browse.Guard

	latest *lru.Cache[string, BrowseResult]
}

func NewBrowseService(deals *DealService) *BrowseService {
	return NewBrowseServiceSize(deals, MaxRecordedViews)
}

// NewBrowseServiceSize is NewBrowseService with a custom bound on recorded views.
func NewBrowseServiceSize(deals *DealService, size int) *BrowseService {
	latest, err := lru.New[string, BrowseResult](max(size, 1))
	if err != nil {
		panic(err)
	}
	return &BrowseService{Deals: deals, Guard: browse.NewGuard(), latest: latest}
}

// Browse loads and filters the catalog for sid. When a newer Browse for the same session
// started meanwhile, the result is not recorded and ErrSuperseded is returned along with
// the freshest recorded view (or this one when none has been recorded yet).
func (s *BrowseService) Browse(ctx context.Context, sid string, q Query) (BrowseResult, error) {
	ticket := s.Guard.Begin(sid)
	defer s.Guard.Release(ticket)
	all, err := s.Deals.GetAll(ctx)
	if err != nil {
		return BrowseResult{}, err
	}
	res := BrowseResult{Query: q, Deals: catalog.Apply(all, q.Filter, q.Sort)}
	res.Total = len(res.Deals)

	ok := s.Guard.Commit(ticket, func() { s.latest.Add(sid, res) })
	if !ok {
		if fresh, found := s.Latest(sid); found {
			return fresh, browse.ErrSuperseded
		}
		return res, browse.ErrSuperseded
	}
	return res, nil
}

// Latest is the last view committed for sid.
func (s *BrowseService) Latest(sid string) (BrowseResult, bool) {
	return s.latest.Get(sid)
}

// Recorded is the number of sessions with a remembered view.
func (s *BrowseService) Recorded() int { return s.latest.Len() }
