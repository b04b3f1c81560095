package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmwangi/soko-api/internal/config"
	"github.com/dmwangi/soko-api/internal/handlers"
	"github.com/dmwangi/soko-api/internal/middleware"
	"github.com/dmwangi/soko-api/internal/models"
)

// SetupRouter wires every endpoint. Public routes come first; everything else
// sits behind the bearer-token authenticator, with admin routes additionally
// behind the role gate.
func SetupRouter(h *handlers.Handlers, cfg config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// --- Auth (public) ---
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// --- Catalog (public) ---
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/products/:id/reviews", h.GetProductReviews)

		// --- Protected (login required) ---
		authed := api.Group("/")
		authed.Use(middleware.Authenticate(cfg.JWTSecret))
		{
			authed.GET("/auth/me", h.GetMe)
			authed.PUT("/auth/profile", h.UpdateProfile)
			authed.PUT("/auth/password", h.ChangePassword)
			authed.POST("/auth/logout", h.Logout)

			// Catalog management (ownership enforced in the handlers)
			authed.POST("/products", h.CreateProduct)
			authed.PUT("/products/:id", h.UpdateProduct)
			authed.DELETE("/products/:id", h.DeleteProduct)

			// Orders
			authed.POST("/orders", h.CreateOrder)
			authed.GET("/orders", h.GetMyOrders)
			authed.GET("/orders/:id", h.GetOrder)
			authed.PUT("/orders/:id/cancel", h.CancelOrder)

			// Cart
			authed.POST("/users/cart", h.AddToCart)
			authed.GET("/users/cart", h.GetCart)
			authed.PUT("/users/cart/:itemId", h.UpdateCartItem)
			authed.DELETE("/users/cart/:itemId", h.RemoveFromCart)
			authed.DELETE("/users/cart", h.ClearCart)

			// Wishlist
			authed.POST("/users/wishlist", h.AddToWishlist)
			authed.GET("/users/wishlist", h.GetWishlist)
			authed.DELETE("/users/wishlist/:productId", h.RemoveFromWishlist)

			// Reviews & dashboard
			authed.POST("/users/reviews", h.AddProductReview)
			authed.GET("/users/dashboard", h.GetDashboard)
		}

		// --- Admin-only ---
		admin := api.Group("/orders/admin")
		admin.Use(middleware.Authenticate(cfg.JWTSecret))
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/all", h.GetAllOrders)
			admin.PUT("/:id/status", h.UpdateOrderStatus)
		}
	}

	return router
}
