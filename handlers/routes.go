// handlers/routes.go
package handlers

import (
	"gamification-service/middleware"
	"gamification-service/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles everything the routes call into.
type Services struct {
	Catalog    *services.Catalog
	Players    *services.PlayerService
	Rewards    *services.RewardService
	Streaks    *services.StreakService
	Campaigns  *services.CampaignService
	Challenges *services.ChallengeService
	Activity   *services.ActivityService
}

type categoryXPRequest struct {
	Category string `json:"category" validate:"required"`
	Amount   int64  `json:"amount" validate:"gt=0"`
}

type streakRequest struct {
	Category string `json:"category"`
}

type objectiveRequest struct {
	ObjectiveType string `json:"objective_type" validate:"required"`
	Increment     int    `json:"increment" validate:"gte=0"`
}

func SetupRoutes(app *fiber.App, svc Services) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Public catalog reads
	app.Get("/catalog/achievements", func(c *fiber.Ctx) error {
		return c.JSON(svc.Catalog.Achievements())
	})
	app.Get("/catalog/badges", func(c *fiber.Ctx) error {
		return c.JSON(svc.Catalog.Badges())
	})
	app.Get("/campaigns", func(c *fiber.Ctx) error {
		return c.JSON(svc.Campaigns.ListCampaigns())
	})
	app.Get("/campaigns/:id/quests", func(c *fiber.Ctx) error {
		quests, err := svc.Campaigns.Quests(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(quests)
	})
	app.Get("/challenges", func(c *fiber.Ctx) error {
		return c.JSON(svc.Challenges.ListActive())
	})
	app.Get("/players/:userId/progress", func(c *fiber.Ctx) error {
		prog, err := svc.Players.Lookup(c.UserContext(), c.Params("userId"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(prog)
	})

	// 🔐 Secured routes: the gateway forwards the caller in X-User-ID
	secured := middleware.UserContextMiddleware()

	app.Get("/user/progress", secured, func(c *fiber.Ctx) error {
		prog, err := svc.Players.Progress(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(prog)
	})

	app.Post("/user/activity", secured, func(c *fiber.Ctx) error {
		var ev services.ActivityEvent
		if ok, err := parseBody(c, &ev); !ok {
			return err
		}
		res, err := svc.Activity.Ingest(c.UserContext(), middleware.UserID(c), ev)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	app.Post("/user/category-xp", secured, func(c *fiber.Ctx) error {
		var req categoryXPRequest
		if ok, err := parseBody(c, &req); !ok {
			return err
		}
		res, err := svc.Rewards.AddCategoryXP(c.UserContext(), middleware.UserID(c), req.Category, req.Amount)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	app.Post("/user/streak", secured, func(c *fiber.Ctx) error {
		var req streakRequest
		if ok, err := parseBody(c, &req); !ok {
			return err
		}
		res, err := svc.Streaks.RecordStreakActivity(c.UserContext(), middleware.UserID(c), req.Category)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	app.Get("/user/streaks", secured, func(c *fiber.Ctx) error {
		res, err := svc.Streaks.ListStreaks(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	app.Put("/user/customization", secured, func(c *fiber.Ctx) error {
		doc := map[string]any{}
		if err := c.BodyParser(&doc); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := svc.Players.SetCustomization(c.UserContext(), middleware.UserID(c), doc); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"customization": doc})
	})

	app.Post("/campaigns/:id/activate", secured, func(c *fiber.Ctx) error {
		res, err := svc.Campaigns.ActivateCampaign(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	app.Get("/campaigns/:id/progress", secured, func(c *fiber.Ctx) error {
		res, err := svc.Campaigns.Progress(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	app.Post("/campaigns/:id/quests/:questId/progress", secured, func(c *fiber.Ctx) error {
		var req objectiveRequest
		if ok, err := parseBody(c, &req); !ok {
			return err
		}
		if req.Increment == 0 {
			req.Increment = 1
		}
		res, err := svc.Campaigns.AdvanceQuestObjective(c.UserContext(), middleware.UserID(c),
			c.Params("id"), c.Params("questId"), req.ObjectiveType, req.Increment)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	app.Post("/challenges/:id/track", secured, func(c *fiber.Ctx) error {
		if err := svc.Challenges.TrackChallenge(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"challenge_id": c.Params("id"), "tracked": true})
	})

	app.Delete("/challenges/:id/track", secured, func(c *fiber.Ctx) error {
		if err := svc.Challenges.UntrackChallenge(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"challenge_id": c.Params("id"), "tracked": false})
	})

	app.Get("/challenges/:id/status", secured, func(c *fiber.Ctx) error {
		res, err := svc.Challenges.Status(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	app.Post("/challenges/:id/complete", secured, func(c *fiber.Ctx) error {
		res, err := svc.Challenges.CompleteChallenge(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})
}
