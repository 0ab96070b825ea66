package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/interfaces/http/middleware"
	"github.com/ledger/backend/internal/interfaces/http/router"
)

// Handlers bundles the handlers mounted under the versioned API
type Handlers struct {
	Auth       *AuthHandler
	Supplier   *SupplierHandler
	Product    *ProductHandler
	Rate       *RateHandler
	Collection *CollectionHandler
	Payment    *PaymentHandler
	Role       *RoleHandler
	User       *UserHandler
	Report     *ReportHandler
}

// RouteOptions holds middleware mounted on individual groups. Nil entries
// are skipped.
type RouteOptions struct {
	// AuthLimiter throttles login and token refresh
	AuthLimiter gin.HandlerFunc
	// Idempotency protects collection and payment writes from replays
	Idempotency gin.HandlerFunc
}

// Groups returns the API route groups. Authentication is expected on the
// router; every route here checks its own resource:action permission.
func (h *Handlers) Groups(opts RouteOptions) []*router.DomainGroup {
	auth := router.NewDomainGroup("auth", "/auth")
	auth.POST("/login", with(opts.AuthLimiter, h.Auth.Login)...).
		POST("/refresh", with(opts.AuthLimiter, h.Auth.RefreshToken)...).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	suppliers := router.NewDomainGroup("suppliers", "/suppliers").
		CRUD(h.Supplier, guard(identity.ResourceSupplier))
	suppliers.GET("/:id/balance", middleware.RequireResourceAction(identity.ResourceSupplier, identity.ActionRead), h.Supplier.Balance).
		GET("/:id/statement", middleware.RequireResourceAction(identity.ResourceSupplier, identity.ActionRead), h.Supplier.Statement)

	products := router.NewDomainGroup("products", "/products").
		CRUD(h.Product, guard(identity.ResourceProduct))
	products.GET("/:id/rates", middleware.RequireResourceAction(identity.ResourceRate, identity.ActionRead), h.Product.Rates).
		GET("/:id/current-rate", middleware.RequireResourceAction(identity.ResourceRate, identity.ActionRead), h.Product.CurrentRate)

	rates := router.NewDomainGroup("rates", "/rates").
		CRUD(h.Rate, guard(identity.ResourceRate))

	collections := router.NewDomainGroup("collections", "/collections")
	payments := router.NewDomainGroup("payments", "/payments")
	if opts.Idempotency != nil {
		collections.Use(opts.Idempotency)
		payments.Use(opts.Idempotency)
	}
	collections.CRUD(h.Collection, guard(identity.ResourceCollection))
	payments.CRUD(h.Payment, guard(identity.ResourcePayment))

	// Static segments resolve ahead of /:id
	roles := router.NewDomainGroup("roles", "/roles")
	roles.GET("/permissions", middleware.RequireResourceAction(identity.ResourceRole, identity.ActionRead), h.Role.Permissions).
		CRUD(h.Role, guard(identity.ResourceRole))

	users := router.NewDomainGroup("users", "/users").
		CRUD(h.User, guard(identity.ResourceUser))

	readReports := middleware.RequireResourceAction(identity.ResourceReport, identity.ActionRead)
	exportReports := middleware.RequireResourceAction(identity.ResourceReport, identity.ActionExport)
	reports := router.NewDomainGroup("reports", "/reports")
	reports.GET("/summary", readReports, h.Report.Summary).
		GET("/summary/pdf", exportReports, h.Report.SummaryPDF).
		GET("/supplier-balances", readReports, h.Report.SupplierBalances).
		GET("/suppliers/:id/statement/pdf", exportReports, h.Report.StatementPDF)

	return []*router.DomainGroup{auth, suppliers, products, rates, collections, payments, roles, users, reports}
}

func guard(resource string) router.Guard {
	return func(action string) gin.HandlerFunc {
		return middleware.RequireResourceAction(resource, action)
	}
}

func with(mw gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if mw == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{mw, h}
}
