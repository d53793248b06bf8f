// internal/platform/di/container.go
package di

import (
	"context"
	"net/http"

	// インバウンドアダプタ (HTTP)
	httpin "storefront/internal/adapters/in/http"
	"storefront/internal/adapters/in/http/middleware"

	// アウトバウンドアダプタ実装
	fs "storefront/internal/adapters/out/firestore"
	gcsout "storefront/internal/adapters/out/gcs"
	"storefront/internal/adapters/out/identity"
	mailout "storefront/internal/adapters/out/mail"

	// アプリケーション層ユースケース
	uc "storefront/internal/application/usecase"
	orderdom "storefront/internal/domain/order"

	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/logging"
	"storefront/internal/platform/di/shared"
)

// Container は main.go から使う依存オブジェクトの束。
// これを返したい目的は：main.go を極限まで薄くすること。
type Container struct {
	Config *appcfg.Config
	Infra  *shared.Infra

	ProductUC  *uc.ProductUsecase
	CategoryUC *uc.CategoryUsecase
	UserUC     *uc.UserUsecase
	AddressUC  *uc.AddressUsecase
	CartUC     *uc.CartUsecase
	OrderUC    *uc.OrderUsecase
	AuthUC     *uc.AuthUsecase

	Auth *middleware.AuthMiddleware
}

// NewContainer builds shared infra and wires repositories, usecases and the auth gate.
func NewContainer(ctx context.Context, cfg *appcfg.Config) (*Container, error) {
	inf, err := shared.NewInfra(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log := logging.For("di")

	client := inf.Firestore.Client

	// ------------------------------------------------------------
	// Repositories
	// ------------------------------------------------------------
	productRepo := fs.NewProductRepositoryFS(client)
	categoryRepo := fs.NewCategoryRepositoryFS(client)
	userRepo := fs.NewUserRepositoryFS(client)
	cartRepo := fs.NewCartRepositoryFS(client)
	orderRepo := fs.NewOrderRepositoryFS(client)
	imageStore := gcsout.NewProductImageRepositoryGCS(inf.GCS, cfg.ProductImageBucket)

	// ------------------------------------------------------------
	// Optional ports (never hand a typed nil to an interface)
	// ------------------------------------------------------------
	// FirebaseIdentity without a client answers every call with an error.
	idp := identity.NewFirebaseIdentity(nil)
	var verifier middleware.TokenVerifier
	if inf.FirebaseAuth != nil {
		idp = identity.NewFirebaseIdentity(inf.FirebaseAuth)
		verifier = inf.FirebaseAuth
	} else {
		log.Warn("[di] Firebase Auth unavailable: auth routes will answer 503")
	}

	var password uc.PasswordVerifierPort
	if inf.PasswordVerifier != nil {
		password = inf.PasswordVerifier
	}

	var ledger orderdom.Ledger
	if inf.Ledger != nil {
		ledger = inf.Ledger
	}

	var notifier uc.NotifierPort
	if inf.SendGridAPIKey != "" && cfg.SendGridFrom != "" {
		notifier = mailout.NewStorefrontMailer(
			mailout.NewSendGridClient(inf.SendGridAPIKey, "Storefront"),
			cfg.SendGridFrom,
			"Storefront",
		)
		log.Info("[di] SendGrid mailer enabled")
	} else {
		log.Info("[di] SendGrid not configured (transactional mail disabled)")
	}

	// ------------------------------------------------------------
	// Usecases
	// ------------------------------------------------------------
	c := &Container{
		Config: cfg,
		Infra:  inf,

		ProductUC:  uc.NewProductUsecase(productRepo, imageStore, nil, nil),
		CategoryUC: uc.NewCategoryUsecase(categoryRepo, productRepo, nil, nil),
		UserUC:     uc.NewUserUsecase(userRepo, idp, nil),
		AddressUC:  uc.NewAddressUsecase(userRepo, nil, nil),
		CartUC: uc.NewCartUsecase(uc.CartDeps{
			Carts:    cartRepo,
			Products: productRepo,
			Users:    userRepo,
			Orders:   orderRepo,
			Ledger:   ledger,
			Notifier: notifier,
		}),
		OrderUC: uc.NewOrderUsecase(uc.OrderDeps{
			Orders:   orderRepo,
			Products: productRepo,
			Users:    userRepo,
			Ledger:   ledger,
			Notifier: notifier,
		}),
		AuthUC: uc.NewAuthUsecase(userRepo, idp, password, notifier, nil),
	}

	// verifier が nil の場合、保護ルートは 503 を返す
	c.Auth = middleware.NewAuthMiddleware(verifier, userRepo)

	return c, nil
}

// RouterDeps assembles the dependencies for httpin.NewRouter.
func (c *Container) RouterDeps() httpin.RouterDeps {
	return httpin.RouterDeps{
		ProductUC:  c.ProductUC,
		CategoryUC: c.CategoryUC,
		UserUC:     c.UserUC,
		AddressUC:  c.AddressUC,
		CartUC:     c.CartUC,
		OrderUC:    c.OrderUC,
		AuthUC:     c.AuthUC,

		Auth: c.Auth,

		Env:   c.Config.AppEnv,
		Store: c.Infra.Firestore,

		CORSOrigins:     c.Config.CORSOrigins,
		RateLimitWindow: c.Config.RateLimitWindow(),
		RateLimitMax:    c.Config.RateLimitMaxRequests,
		Production:      c.Config.IsProduction(),
		VerboseErrors:   c.Config.IsDevelopment(),
	}
}

// Handler returns the fully wrapped application handler.
func (c *Container) Handler() http.Handler {
	return httpin.NewRouter(c.RouterDeps())
}

// Close は Cloud Run 終了時などに呼んで安全にリソースを閉じる。
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	return c.Infra.Close()
}
