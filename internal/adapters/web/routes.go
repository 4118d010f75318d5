package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/tubededentifrice/twitter-clone/internal/metrics"
)

// SetupRoutes configures the application routes. State-changing routes go
// through the action limiter.
func SetupRoutes(app *fiber.App, handlers *Handlers, limiter *ActionLimiter) {
	act := limiter.Middleware()

	// Timeline and threads
	app.Get("/", handlers.Feed)
	app.Post("/tweets", act, handlers.PostTweet)
	app.Get("/tweets/:id", handlers.TweetDetail)
	app.Get("/tweets/:id/replies", handlers.Replies)
	app.Post("/tweets/:id/replies", act, handlers.PostTweet)
	app.Post("/tweets/:id/reaction", act, handlers.React)
	app.Post("/open", handlers.Open)

	// Profiles
	app.Get("/users/:username", handlers.Profile)
	app.Post("/users/:username/follow", act, handlers.Follow)
	app.Post("/users/:username/unfollow", act, handlers.Unfollow)

	// Accounts
	app.Get("/login", handlers.LoginPage)
	app.Post("/login", act, handlers.Login)
	app.Get("/register", handlers.RegisterPage)
	app.Post("/register", act, handlers.Register)
	app.Post("/logout", handlers.Logout)

	// Operations
	app.Get("/healthz", handlers.Health)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}
