package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/NEPJU/APIs/internal/service"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth      service.AuthService
	Catalog   service.CatalogService
	Cart      service.CartService
	Favorites service.FavoriteService
	Orders    service.OrderService
	Reviews   service.ReviewService
	Reports   service.ReportService
}

type RouteOptions struct {
	// Redis backs the login/register rate limit; nil disables it.
	Redis           *redis.Client
	RateLimitPerMin int
}

// Register mounts every route on r.
func Register(r *gin.Engine, s Services, o RouteOptions) {
	r.Use(RequestID(), CORS())

	authH := NewAuthHTTP(s.Auth)
	products := NewProductHTTP(s.Catalog)
	cart := NewCartHTTP(s.Cart, s.Favorites)
	orders := NewOrderHTTP(s.Orders)
	reviews := NewReviewHTTP(s.Reviews)
	reports := NewReportHTTP(s.Reports)

	limit := RateLimiter(o.Redis, "auth", o.RateLimitPerMin, time.Minute)

	// --- public ---
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.POST("/register", limit, authH.Register)
	r.POST("/login", limit, authH.Login)
	r.POST("/logout", authH.Logout)
	r.GET("/auth/status", authH.Status)
	r.POST("/check", authH.Check)
	r.POST("/check-username", authH.CheckUsername)
	r.POST("/check-email", authH.CheckEmail)
	r.GET("/products", products.List)
	r.GET("/products/:id", products.Get)
	r.GET("/product-reviews/:id", reviews.ForProduct)

	// --- members ---
	m := r.Group("/", Auth(s.Auth))
	m.GET("/user/:id", authH.Profile)
	m.PUT("/user/:id", authH.UpdateProfile)
	m.POST("/add-to-cart", cart.Add)
	m.GET("/cart/:memberId", cart.Get)
	m.DELETE("/cart/:memberId/:productId", cart.Remove)
	m.POST("/add-to-favorites", cart.AddFavorite)
	m.GET("/favorites/:memberId", cart.ListFavorites)
	m.DELETE("/favorites/:memberId/:productId", cart.RemoveFavorite)
	m.POST("/order", orders.Place)
	m.GET("/orders/:memberId", orders.MemberOrders)
	m.GET("/order-items/:orderId", orders.Items)
	m.POST("/orders/:id/upload", orders.UploadProof)
	m.PUT("/orders/:id/cancel-order", orders.Cancel)
	m.POST("/product-ratings", reviews.AddRating)
	m.POST("/product-reviews", reviews.AddReview)
	m.DELETE("/product-reviews/:id", reviews.Delete)

	// --- admin ---
	a := m.Group("/", RequireAdmin())
	a.POST("/upload-image", products.Create)
	a.PUT("/products/:id", products.Update)
	a.DELETE("/products/:id", products.Delete)
	a.GET("/admin/orders", orders.AdminOrders)
	a.PUT("/orders/:id/status", orders.UpdateStatus)
	a.PUT("/orders/:id/add-tracking", orders.AddTracking)
	a.PUT("/orders/:id/confirm-payment", orders.ConfirmPayment)
	a.GET("/dashboard/sales-summary", reports.SalesSummary)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})
}
