package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/media"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/middleware"
)

type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
	handlers   *handlers.Handlers
	metrics    *metrics.Metrics
	gatherer   prometheus.Gatherer
	mediaDir   string
	logger     *logging.LoggerV2
}

// New builds the router. m may be nil, in which case requests are not
// measured; /metrics still serves whatever g gathers.
func New(h *handlers.Handlers, m *metrics.Metrics, g prometheus.Gatherer, mediaDir string, cfg *config.Config) *Server {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(m.Middleware())

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		metrics:  m,
		gatherer: g,
		mediaDir: mediaDir,
		logger:   logging.NewLoggerV2("server"),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.Health)
	s.router.GET("/ready", h.Ready)
	s.router.GET("/live", h.Live)
	s.router.GET("/version", h.Version)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler(s.gatherer)))

	if s.mediaDir != "" {
		s.router.Static(media.URLPrefix, s.mediaDir)
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/products", h.ListProducts)
		v1.POST("/products", h.CreateProduct)
		v1.POST("/products/batch-delete", h.BatchDeleteProducts)
		v1.GET("/products/sku/:sku", h.GetProductBySKU)
		v1.GET("/products/:id", h.GetProduct)
		v1.PATCH("/products/:id", h.UpdateProduct)
		v1.DELETE("/products/:id", h.DeleteProduct)
		v1.POST("/products/:id/image", h.UploadProductImage)
		v1.POST("/products/:id/publish", h.PublishProduct)
		v1.GET("/products/:id/qr", h.GetProductQRCode)

		v1.GET("/categories", h.ListCategories)
		v1.POST("/categories", h.CreateCategory)
		v1.DELETE("/categories/:id", h.DeleteCategory)

		v1.GET("/customers", h.ListCustomers)
		v1.POST("/customers", h.CreateCustomer)
		v1.PATCH("/customers/:id", h.UpdateCustomer)
		v1.DELETE("/customers/:id", h.DeleteCustomer)

		v1.GET("/delivery-providers", h.ListDeliveryProviders)
		v1.POST("/delivery-providers", h.CreateDeliveryProvider)
		v1.PATCH("/delivery-providers/:id", h.UpdateDeliveryProvider)
		v1.DELETE("/delivery-providers/:id", h.DeleteDeliveryProvider)

		v1.GET("/settings", h.GetSettings)
		v1.PATCH("/settings", h.UpdateSettings)

		reg := v1.Group("/registers/:rid")
		{
			reg.GET("/cart", h.GetCart)
			reg.POST("/cart/items", h.AddCartItem)
			reg.POST("/cart/scan", h.ScanCartItem)
			reg.PATCH("/cart/items/:pid", h.UpdateCartItem)
			reg.DELETE("/cart/items/:pid", h.RemoveCartItem)
			reg.PUT("/cart/items/:pid/discount", h.ApplyItemDiscount)
			reg.PUT("/cart/discount", h.ApplyOrderDiscount)
			reg.PUT("/cart/fees", h.SetCartFees)
			reg.PUT("/cart/customer", h.SetCartCustomer)
			reg.PUT("/cart/notes", h.SetCartNotes)
			reg.PUT("/cart/shipping", h.SetCartShipping)
			reg.POST("/cart/clear", h.ClearCart)
			reg.POST("/checkout", h.Checkout)
			reg.POST("/orders/:id/load", h.LoadOrderIntoCart)

			reg.GET("/drawer", h.GetDrawer)
			reg.POST("/drawer/cash-in", h.CashIn)
			reg.POST("/drawer/cash-out", h.CashOut)
			reg.POST("/drawer/z-report", h.GenerateZReport)
		}

		v1.GET("/orders", h.ListOrders)
		v1.POST("/orders", h.CreateOrder)
		v1.POST("/orders/batch-update", h.BatchUpdateOrders)
		v1.GET("/orders/:id", h.GetOrder)
		v1.DELETE("/orders/:id", h.DeleteOrder)
		v1.POST("/orders/:id/void", h.VoidOrder)
		v1.POST("/orders/:id/refund", h.RefundOrder)
		v1.POST("/orders/:id/invoice", h.PrintInvoice)

		v1.GET("/dashboard", h.GetDashboard)
		v1.GET("/z-reports", h.ListZReports)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called; it then returns http.ErrServerClosed.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", logging.Fields{"addr": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
