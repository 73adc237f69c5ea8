package services

import (
	"context"
	"time"

	"dealforge/internal/domain"
)

const (
	StatusActive     = "ACTIVE"
	StatusEndingSoon = "ENDING_SOON"
	StatusExpired    = "EXPIRED"

	endingSoonWindow = 24 * time.Hour
)

type StatusService struct {
	Deals *DealService
}

func NewStatusService(deals *DealService) *StatusService {
	return &StatusService{Deals: deals}
}

// Status converts the time left on a deal into ACTIVE / ENDING_SOON / EXPIRED.
func (s *StatusService) Status(ctx context.Context, dealID int, now time.Time) (domain.DealStatus, error) {
	d, err := s.Deals.GetByID(ctx, dealID)
	if err != nil {
		return domain.DealStatus{}, err
	}
	return TimeUntil(d.EndDate, now), nil
}

// TimeUntil splits the time remaining before end into whole days, hours, minutes and
// seconds. A past end date reports EXPIRED with every field zero.
func TimeUntil(end, now time.Time) domain.DealStatus {
	left := end.Sub(now)
	if left <= 0 {
		return domain.DealStatus{Status: StatusExpired}
	}
	st := domain.DealStatus{Status: StatusActive}
	if left < endingSoonWindow {
		st.Status = StatusEndingSoon
	}
	secs := int(left / time.Second)
	st.Days = secs / 86400
	st.Hours = secs % 86400 / 3600
	st.Minutes = secs % 3600 / 60
	st.Seconds = secs % 60
	return st
}
