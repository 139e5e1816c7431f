package handlers

import (
	"farmdirect/internal/config"
	"farmdirect/internal/repos"
	"farmdirect/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth            *services.AuthService
	AuthHandler     *AuthHandler
	MatchingHandler *MatchingHandler
	DealHandler     *DealHandler
	ListingHandler  *ListingHandler
	ReviewHandler   *ReviewHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	cropRepo := repos.NewCropRepo(db)
	demandRepo := repos.NewDemandRepo(db)
	dealRepo := repos.NewDealRepo(db)
	reviewRepo := repos.NewReviewRepo(db)
	eventRepo := repos.NewEventRepo(db)

	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}
	ledger := services.NewLedgerService(db, cfg.StoreTimeout, services.AcceptPolicy(cfg.AcceptPolicy))

	return &Deps{
		Auth:            authSvc,
		AuthHandler:     &AuthHandler{Auth: authSvc},
		MatchingHandler: &MatchingHandler{Matching: services.NewMatchingService(cropRepo, demandRepo, cfg.StoreTimeout)},
		DealHandler:     &DealHandler{Ledger: ledger, Tracking: &services.TrackingService{Ledger: ledger}},
		ListingHandler:  &ListingHandler{Listings: services.NewListingService(cropRepo, demandRepo, cfg.StoreTimeout)},
		ReviewHandler:   &ReviewHandler{Reviews: services.NewReviewService(reviewRepo, dealRepo, cfg.StoreTimeout)},
		AdminHandler: &AdminHandler{
			Admin:  services.NewAdminService(reviewRepo, cropRepo, demandRepo, cfg.StoreTimeout),
			Events: eventRepo,
		},
	}
}
