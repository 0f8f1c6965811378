package handlers

import (
	"context"
	"net/http"

	"ship-swift-backend/internal/middleware"
	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Deps are the services the HTTP API is built from. Upload and Payment are
// optional; their endpoints answer 503 when nil.
type Deps struct {
	Auth          *services.AuthService
	Roles         *services.RoleService
	Jobs          *services.JobService
	Requests      *services.RequestService
	ActiveJobs    *services.ActiveJobService
	Deliveries    *services.DeliveryService
	Uploads       *services.UploadService
	Chat          *services.ChatService
	Reviews       *services.ReviewService
	Locations     *services.LocationService
	Notifications *services.NotificationService
	Payments      *services.PaymentService
	Hub           *services.WSHub
	// Ping backs the health check
	Ping func(ctx context.Context) error
}

// NewRouter wires every route of the API
func NewRouter(d Deps) http.Handler {
	roleHandler := NewRoleHandler(d.Roles)
	jobHandler := NewJobHandler(d.Jobs, d.Requests)
	requestHandler := NewRequestHandler(d.Requests)
	activeJobHandler := NewActiveJobHandler(d.ActiveJobs, d.Deliveries, d.Uploads)
	chatHandler := NewChatHandler(d.Chat)
	reviewHandler := NewReviewHandler(d.Reviews)
	locationHandler := NewLocationHandler(d.Locations, d.Notifications)
	paymentHandler := NewPaymentHandler(d.Payments)
	wsHandler := NewWebSocketHandler(d.Hub, d.Auth, d.Chat)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	ping := d.Ping
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}
	r.Get("/healthz", Healthz(ping))

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/healthz", Healthz(ping))
		r.Post("/webhooks/stripe", paymentHandler.Webhook)
		r.Get("/roles/driver", roleHandler.IsDriver)
		r.Get("/jobs/{job_id}", jobHandler.GetJob)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(d.Auth))

			r.Get("/me/roles", roleHandler.GetMyRoles)
			r.Put("/me/roles", roleHandler.UpdateMyRoles)
			r.Delete("/me/roles", roleHandler.DeleteMyRoles)
			r.Get("/me/jobs", jobHandler.ListMyJobs)
			r.Get("/me/requests", requestHandler.ListMyRequests)

			r.Post("/jobs", jobHandler.CreateJob)
			r.Post("/jobs/direct", jobHandler.CreateDirectJob)
			r.Get("/jobs", jobHandler.ListOpenJobs)
			r.Patch("/jobs/{job_id}", jobHandler.UpdateJob)
			r.Delete("/jobs/{job_id}", jobHandler.DeleteJob)
			r.Get("/jobs/{job_id}/requests", jobHandler.ListJobRequests)
			r.Post("/jobs/{job_id}/requests", jobHandler.CreateRequest)
			r.Post("/jobs/{job_id}/checkout", paymentHandler.CreateCheckout)

			r.Patch("/requests/{request_id}", requestHandler.UpdateOffer)
			r.Delete("/requests/{request_id}", requestHandler.Withdraw)
			r.Post("/requests/{request_id}/approve", requestHandler.Approve)
			r.Post("/requests/{request_id}/reject", requestHandler.Reject)

			r.Get("/active-jobs", activeJobHandler.List)
			r.Get("/active-jobs/{active_job_id}", activeJobHandler.Get)
			r.Post("/active-jobs/{active_job_id}/collect", activeJobHandler.Collect)
			r.Post("/active-jobs/{active_job_id}/deliver", activeJobHandler.Deliver)
			r.Post("/active-jobs/{active_job_id}/cancel", activeJobHandler.Cancel)
			r.Post("/active-jobs/{active_job_id}/proof-upload", activeJobHandler.ProofUpload)
			r.Get("/active-jobs/{active_job_id}/delivery", activeJobHandler.GetDelivery)

			r.Get("/deliveries/{delivery_id}", activeJobHandler.GetDeliveryByID)
			r.Post("/deliveries/{delivery_id}/confirm", activeJobHandler.ConfirmDelivery)
			r.Post("/deliveries/{delivery_id}/release", activeJobHandler.ReleasePayment)

			r.Get("/contacts", chatHandler.ListContacts)
			r.Post("/contacts", chatHandler.EnsureContact)
			r.Get("/contacts/{contact_id}/messages", chatHandler.ListMessages)
			r.Post("/contacts/{contact_id}/messages", chatHandler.SendMessage)

			r.Post("/reviews", reviewHandler.Create)
			r.Get("/reviews", reviewHandler.List)
			r.Delete("/reviews/{review_id}", reviewHandler.Delete)

			r.Get("/locations", locationHandler.ListLocations)
			r.Post("/locations", locationHandler.CreateLocation)
			r.Delete("/locations/{location_id}", locationHandler.DeleteLocation)

			r.Post("/push-tokens", locationHandler.RegisterPushToken)
			r.Delete("/push-tokens/{token}", locationHandler.UnregisterPushToken)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(d.Roles, models.RoleAdmin))
				r.Get("/jobs", jobHandler.ListAllJobs)
				r.Delete("/reviews/{review_id}", reviewHandler.Delete)
			})
		})
	})

	r.Get("/ws", wsHandler.HandleWebSocket)

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-User-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
