package services_test

import (
	"context"
	"testing"
	"time"

	"dealforge/internal/domain"
	"dealforge/internal/services"
)

func TestTimeUntil(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		end  time.Time
		want domain.DealStatus
	}{
		{"active", now.Add(49*time.Hour + 3*time.Minute + 7*time.Second), domain.DealStatus{Status: "ACTIVE", Days: 2, Hours: 1, Minutes: 3, Seconds: 7}},
		{"ending soon", now.Add(5 * time.Hour), domain.DealStatus{Status: "ENDING_SOON", Hours: 5}},
		{"exactly one day", now.Add(24 * time.Hour), domain.DealStatus{Status: "ACTIVE", Days: 1}},
		{"expired", now.Add(-time.Minute), domain.DealStatus{Status: "EXPIRED"}},
		{"ends now", now, domain.DealStatus{Status: "EXPIRED"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.TimeUntil(tc.end, now); got != tc.want {
				t.Fatalf("want %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestStatusService_Status(t *testing.T) {
	ctx := context.Background()
	deals := services.NewDealService(memkv(t), instant)
	svc := services.NewStatusService(deals)

	d, err := deals.GetByID(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	st, err := svc.Status(ctx, d.ID, d.EndDate.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if st.Status != "EXPIRED" {
		t.Fatalf("want EXPIRED, got %+v", st)
	}

	if _, err := svc.Status(ctx, 999, time.Now()); err == nil {
		t.Fatal("want error for unknown deal")
	}
}
