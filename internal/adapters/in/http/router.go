// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"
	"time"

	"storefront/internal/adapters/in/http/api"
	"storefront/internal/adapters/in/http/api/handler"
	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
)

// RouterDeps collects all usecases (and other dependencies) injected from main.go.
type RouterDeps struct {
	ProductUC  *usecase.ProductUsecase
	CategoryUC *usecase.CategoryUsecase
	UserUC     *usecase.UserUsecase
	AddressUC  *usecase.AddressUsecase
	CartUC     *usecase.CartUsecase
	OrderUC    *usecase.OrderUsecase
	AuthUC     *usecase.AuthUsecase

	Auth *middleware.AuthMiddleware

	// health
	Env   string
	Store handler.Pinger

	CORSOrigins     []string
	RateLimitWindow time.Duration
	RateLimitMax    int
	Production      bool
	VerboseErrors   bool
}

// NewRouter sets up HTTP routing and the middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	handler.SetVerboseErrors(deps.VerboseErrors)

	required := passThrough
	optional := passThrough
	if deps.Auth != nil {
		required = deps.Auth.Handler
		optional = deps.Auth.Optional
	}

	var d api.Deps
	// 以降、Usecase が存在するものだけマウントする
	if deps.ProductUC != nil {
		d.Products = optional(handler.NewProductHandler(deps.ProductUC))
	}
	if deps.CategoryUC != nil {
		d.Categories = optional(handler.NewCategoryHandler(deps.CategoryUC))
	}
	if deps.UserUC != nil {
		d.Users = required(handler.NewUserHandler(deps.UserUC))
	}
	if deps.AddressUC != nil {
		d.Addresses = required(handler.NewAddressHandler(deps.AddressUC))
	}
	if deps.CartUC != nil {
		d.Cart = required(handler.NewCartHandler(deps.CartUC))
	}
	if deps.OrderUC != nil {
		d.Orders = required(handler.NewOrderHandler(deps.OrderUC))
	}
	if deps.AuthUC != nil {
		d.Auth = optional(handler.NewAuthHandler(deps.AuthUC))
	}

	apiMux := http.NewServeMux()
	api.Register(apiMux, d)

	var apiHandler http.Handler = apiMux
	if deps.RateLimitMax > 0 && deps.RateLimitWindow > 0 {
		apiHandler = middleware.NewRateLimiter(deps.RateLimitWindow, deps.RateLimitMax).Handler(apiMux)
	}

	mux := http.NewServeMux()

	// Health check (always on, outside the rate limit)
	health := handler.NewHealthHandler(deps.Env, deps.Store)
	mux.Handle("/healthz", health)
	mux.Handle("/health", health)

	mux.Handle("/api/", apiHandler)

	// Recover が最外（チェーン順が重要）
	return middleware.Chain(mux,
		middleware.Recover,
		middleware.RequestID,
		middleware.AccessLog,
		middleware.CORS(deps.CORSOrigins),
		middleware.SecurityHeaders(deps.Production),
	)
}

func passThrough(h http.Handler) http.Handler { return h }
