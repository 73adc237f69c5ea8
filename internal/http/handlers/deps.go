package handlers

import (
	"dealforge/internal/config"
	"dealforge/internal/repos"
	"dealforge/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	HomeHandler   *HomeHandler
	BrowseHandler *BrowseHandler
	DealHandler   *DealHandler
	CartHandler   *CartHandler
	StatusHandler *StatusHandler
	APIHandler    *APIHandler
	AdminHandler  *AdminHandler

	Admin *services.AdminAuth
	Cart  *services.CartService
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	kv := repos.NewKVRepo(db)
	lat := services.Latency{Scale: cfg.LatencyScale}

	dealSvc := services.NewDealService(kv, lat)
	reviewSvc := services.NewReviewService(kv, lat)
	cartSvc := services.NewCartService(kv, dealSvc, services.LogNotifier{})
	browseSvc := services.NewBrowseService(dealSvc)
	detailSvc := services.NewDetailService(dealSvc, reviewSvc)
	statusSvc := services.NewStatusService(dealSvc)

	return &Deps{
		HomeHandler:   &HomeHandler{Deals: dealSvc},
		BrowseHandler: &BrowseHandler{Browse: browseSvc},
		DealHandler:   &DealHandler{Details: detailSvc},
		CartHandler:   &CartHandler{Cart: cartSvc, Browse: browseSvc},
		StatusHandler: &StatusHandler{Status: statusSvc},
		APIHandler:    &APIHandler{Deals: dealSvc, Reviews: reviewSvc, Cart: cartSvc, Browse: browseSvc},
		AdminHandler:  &AdminHandler{Deals: dealSvc, Reviews: reviewSvc},
		Admin:         &services.AdminAuth{Hash: cfg.AdminTokenHash},
		Cart:          cartSvc,
	}
}
