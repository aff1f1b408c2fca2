package routes

import (
	"pinghunt/controllers/claim"
	"pinghunt/controllers/hint"
	"pinghunt/controllers/ping"
	"pinghunt/middlewares"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App) {
	// public
	app.Get("/pings", ping.ListPublicHandler)
	app.Post("/pings/:id/claim", claim.SubmitHandler)
	app.Post("/hints/purchase", hint.PurchaseHandler)
	app.Get("/hints", hint.ListHandler)

	// admin
	adminroutes := app.Group("/admin", middlewares.AdminAuth())
	adminroutes.Post("/pings", ping.CreateHandler)
	adminroutes.Get("/pings", ping.ListAdminHandler)
	adminroutes.Put("/pings/:id", ping.UpdateHandler)
	adminroutes.Delete("/pings/:id", ping.DeleteHandler)
	adminroutes.Post("/pings/:id/approve", claim.ApproveHandler)
	adminroutes.Get("/pings/:id/secret", ping.SecretHandler)
}
