package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"farmdirect/internal/domain"
	applog "farmdirect/internal/log"
)

// Register mounts every API route on app.
func Register(app *fiber.App, d *Deps) {
	authed := RequireUser(d.Auth)
	farmer := RequireRole(domain.RoleFarmer)
	buyer := RequireRole(domain.RoleBuyer)

	app.Get("/healthz", func(c *fiber.Ctx) error { return ok(c, fiber.Map{"ok": true}) })

	// Auth routes (login throttled)
	app.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return reject(c, fiber.StatusTooManyRequests, "Too many attempts. Please try again later.")
		},
	}), d.AuthHandler.Login)
	app.Post("/auth/logout", authed, d.AuthHandler.Logout)

	// Matching scans every open demand; keep it on a tighter budget.
	m := app.Group("/matching", authed)
	m.Post("/match", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|match"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.match.hit", nil)
			return reject(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
		},
	}), d.MatchingHandler.MatchAll)
	m.Get("/matches/farmer", d.MatchingHandler.ForFarmer)
	m.Get("/matches/buyer", d.MatchingHandler.ForBuyer)

	deals := app.Group("/deals", authed)
	deals.Post("/create", buyer, d.DealHandler.Create)
	deals.Post("/confirm/:dealId", d.DealHandler.Confirm)
	deals.Post("/cancel/:dealId", d.DealHandler.Cancel)
	deals.Get("/my-deals", d.DealHandler.Mine)
	deals.Patch("/status/:dealId", d.DealHandler.UpdateStatus)
	deals.Get("/tracking/:dealId", d.DealHandler.Track)
	deals.Post("/negotiate/:dealId", d.DealHandler.Offer)
	deals.Get("/negotiations/:dealId", d.DealHandler.Offers)
	deals.Post("/accept/:dealId", d.DealHandler.Accept)
	deals.Get("/:dealId", d.DealHandler.Get)

	farmers := app.Group("/farmers", authed, farmer)
	farmers.Post("/crops", d.ListingHandler.CreateCrop)
	farmers.Get("/crops", d.ListingHandler.MyCrops)
	farmers.Patch("/crops/:id/status", d.ListingHandler.AdvanceCrop)

	buyers := app.Group("/buyers", authed, buyer)
	buyers.Post("/negotiate", d.DealHandler.Negotiate)
	buyers.Post("/demands", d.ListingHandler.CreateDemand)
	buyers.Get("/demands", d.ListingHandler.MyDemands)
	buyers.Post("/demands/:id/cancel", d.ListingHandler.CancelDemand)

	app.Post("/reviews", authed, d.ReviewHandler.Create)
	app.Get("/reviews/:userId", authed, d.ReviewHandler.ForUser)

	admin := app.Group("/admin", authed, RequireRole(domain.RoleAdmin))
	admin.Post("/delete", d.AdminHandler.Delete)
	admin.Get("/outbox", d.AdminHandler.Outbox)

	app.Use(func(c *fiber.Ctx) error {
		return reject(c, fiber.StatusNotFound, "route not found")
	})
}
