package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/cobrato/cobrato/internal/collectionrule"
	ruledomain "github.com/cobrato/cobrato/internal/collectionrule/domain"
	"github.com/cobrato/cobrato/internal/config"
	"github.com/cobrato/cobrato/internal/customer"
	customerdomain "github.com/cobrato/cobrato/internal/customer/domain"
	"github.com/cobrato/cobrato/internal/dispatch"
	"github.com/cobrato/cobrato/internal/dunning"
	dunningdomain "github.com/cobrato/cobrato/internal/dunning/domain"
	"github.com/cobrato/cobrato/internal/invoice"
	invoicedomain "github.com/cobrato/cobrato/internal/invoice/domain"
	"github.com/cobrato/cobrato/internal/messaging"
	messagingdomain "github.com/cobrato/cobrato/internal/messaging/domain"
	"github.com/cobrato/cobrato/internal/observability"
	obsmiddleware "github.com/cobrato/cobrato/internal/observability/logger"
	obstracing "github.com/cobrato/cobrato/internal/observability/tracing"
	"github.com/cobrato/cobrato/internal/organization"
	organizationdomain "github.com/cobrato/cobrato/internal/organization/domain"
	"github.com/cobrato/cobrato/internal/payment"
	paymentdomain "github.com/cobrato/cobrato/internal/payment/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	organization.Module,
	customer.Module,
	collectionrule.Module,
	invoice.Module,
	messaging.Module,
	dispatch.Module,
	dunning.Module,
	payment.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	organizationSvc organizationdomain.Service
	customerSvc     customerdomain.Service
	ruleSvc         ruledomain.Service
	invoiceSvc      invoicedomain.Service
	messagingSvc    messagingdomain.Service
	dunningSvc      dunningdomain.Service
	paymentSvc      paymentdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	OrganizationSvc organizationdomain.Service
	CustomerSvc     customerdomain.Service
	RuleSvc         ruledomain.Service
	InvoiceSvc      invoicedomain.Service
	MessagingSvc    messagingdomain.Service
	DunningSvc      dunningdomain.Service
	PaymentSvc      paymentdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		organizationSvc: p.OrganizationSvc,
		customerSvc:     p.CustomerSvc,
		ruleSvc:         p.RuleSvc,
		invoiceSvc:      p.InvoiceSvc,
		messagingSvc:    p.MessagingSvc,
		dunningSvc:      p.DunningSvc,
		paymentSvc:      p.PaymentSvc,
	}

	svc.registerAdminRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerAdminRoutes covers the platform control plane. These routes manage
// tenants themselves and are not scoped by the X-Org-ID header.
func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/v1")

	orgs := admin.Group("/organizations")
	{
		orgs.POST("", s.CreateOrganization)
		orgs.GET("", s.ListOrganizations)
		orgs.GET("/:id", s.GetOrganizationByID)
		orgs.PATCH("/:id/subscription", s.UpdateOrganizationSubscription)
		orgs.POST("/:id/payment-link", s.CreateOrganizationPaymentLink)
	}

	admin.POST("/dunning/run-all", s.RunDunning)
}

// registerAPIRoutes covers the tenant-scoped API surface.
func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1", OrgContext())

	customers := api.Group("/customers")
	{
		customers.POST("", s.CreateCustomer)
		customers.GET("", s.ListCustomers)
		customers.GET("/:id", s.GetCustomerByID)
		customers.PATCH("/:id", s.UpdateCustomer)
		customers.DELETE("/:id", s.DeleteCustomer)
		customers.POST("/:id/restore", s.RestoreCustomer)
	}

	rules := api.Group("/collection-rules")
	{
		rules.POST("", s.CreateCollectionRule)
		rules.GET("", s.ListCollectionRules)
		rules.GET("/:id", s.GetCollectionRuleByID)
		rules.PATCH("/:id", s.UpdateCollectionRule)
		rules.DELETE("/:id", s.DeleteCollectionRule)
		rules.POST("/:id/restore", s.RestoreCollectionRule)
	}

	invoices := api.Group("/invoices")
	{
		invoices.POST("", s.CreateInvoice)
		invoices.GET("", s.ListInvoices)
		invoices.GET("/:id", s.GetInvoiceByID)
		invoices.PATCH("/:id", s.UpdateInvoice)
		invoices.POST("/:id/pay", s.MarkInvoicePaid)
		invoices.POST("/:id/cancel", s.CancelInvoice)
		invoices.POST("/:id/payment-link", s.CreateInvoicePaymentLink)
		invoices.DELETE("/:id", s.DeleteInvoice)
		invoices.POST("/:id/restore", s.RestoreInvoice)
	}

	trash := api.Group("/trash")
	{
		trash.GET("/customers", s.ListTrashedCustomers)
		trash.GET("/collection-rules", s.ListTrashedCollectionRules)
		trash.GET("/invoices", s.ListTrashedInvoices)
	}

	msg := api.Group("/messaging")
	{
		msg.PUT("/settings", s.UpsertMessagingSetting)
		msg.GET("/settings", s.ListMessagingSettings)
		msg.DELETE("/settings/:channel", s.DeleteMessagingSetting)
		msg.POST("/test", s.SendTestMessage)
		msg.GET("/history", s.ListMessageHistory)
	}

	api.POST("/dunning/run", s.RunDunningForOrganization)
}
