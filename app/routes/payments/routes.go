package payments

import (
	"github.com/gofiber/fiber/v2"

	"institute-admin/app/routes/auth"
)

// SetupPaymentsRoutes sets up the payment staging routes
func SetupPaymentsRoutes(app *fiber.App, h *Handlers) {
	api := app.Group("/api/payments")
	api.Use(auth.AuthMiddleware)

	// Staging sessions
	api.Post("/sessions", h.StartSessionAPI)
	api.Get("/sessions/:id", h.GetSessionAPI)
	api.Delete("/sessions/:id", h.CancelSessionAPI)

	// Staged line items
	api.Post("/sessions/:id/items", h.AddItemAPI)
	api.Put("/sessions/:id/items/:itemId", h.UpdateItemAPI)
	api.Delete("/sessions/:id/items/:itemId", h.RemoveItemAPI)

	// Submission
	api.Post("/sessions/:id/submit", h.SubmitAPI)

	// Recorded payments
	api.Get("/history", h.GetStudentPaymentsAPI)
	api.Get("/:reference", h.GetPaymentAPI)
}
