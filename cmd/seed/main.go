// cmd/seed/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	fs "storefront/internal/adapters/out/firestore"
	"storefront/internal/adapters/out/identity"
	uc "storefront/internal/application/usecase"
	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
	"storefront/internal/infra/config"
	"storefront/internal/infra/logging"
	"storefront/internal/platform/di/shared"
)

type seedCategory struct {
	id, name, description string
}

type seedProduct struct {
	id       string
	in       productdom.NewInput
	featured bool
}

var categories = []seedCategory{
	{"electronics", "Electronics", "Phones, audio and accessories"},
	{"clothing", "Clothing", "Apparel for every season"},
	{"home", "Home & Kitchen", "Cookware, decor and furniture"},
	{"books", "Books", "Fiction, non-fiction and reference"},
}

func products() []seedProduct {
	p := decimal.RequireFromString
	cp := func(s string) *decimal.Decimal { d := p(s); return &d }
	return []seedProduct{
		{"wireless-headphones", productdom.NewInput{
			Name: "Wireless Headphones", Description: "Noise cancelling over-ear headphones",
			Price: p("199.99"), ComparePrice: cp("249.99"), Category: "electronics", Brand: "SoundMax",
			Stock: 50, Images: []string{"https://placehold.co/600x600?text=Headphones"}, Tags: []string{"audio", "wireless"},
		}, true},
		{"smartphone-x", productdom.NewInput{
			Name: "Smartphone X", Description: "6.5 inch display, 128GB storage",
			Price: p("699.00"), Category: "electronics", Brand: "Nova",
			Stock: 25, Images: []string{"https://placehold.co/600x600?text=Smartphone"}, Tags: []string{"phone"},
		}, true},
		{"cotton-tshirt", productdom.NewInput{
			Name: "Cotton T-Shirt", Description: "Organic cotton crew neck",
			Price: p("19.50"), Category: "clothing", Brand: "Basics",
			Stock: 200, Images: []string{"https://placehold.co/600x600?text=T-Shirt"}, Tags: []string{"cotton", "summer"},
		}, false},
		{"denim-jacket", productdom.NewInput{
			Name: "Denim Jacket", Description: "Classic fit denim jacket",
			Price: p("79.90"), ComparePrice: cp("99.90"), Category: "clothing", Brand: "Basics",
			Stock: 40, Images: []string{"https://placehold.co/600x600?text=Jacket"}, Tags: []string{"denim"},
		}, false},
		{"chef-knife", productdom.NewInput{
			Name: "Chef Knife", Description: "8 inch stainless steel chef knife",
			Price: p("49.00"), Category: "home", Brand: "Edge",
			Stock: 75, Images: []string{"https://placehold.co/600x600?text=Knife"}, Tags: []string{"kitchen"},
		}, false},
		{"go-in-practice", productdom.NewInput{
			Name: "Programming in Go", Description: "A practical guide to Go",
			Price: p("39.99"), Category: "books", Brand: "TechPress",
			Stock: 0, Images: []string{"https://placehold.co/600x600?text=Book"}, Tags: []string{"programming"},
		}, true},
	}
}

func main() {
	withAdmin := flag.Bool("admin", false, "create an admin account from SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		logging.For("seed").Fatalf("[seed] config: %v", err)
	}
	logging.Init(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON || cfg.IsProduction()})
	log := logging.For("seed")

	inf, err := shared.NewInfra(ctx, cfg)
	if err != nil {
		log.Fatalf("[seed] infra: %v", err)
	}
	defer inf.Close()

	client := inf.Firestore.Client
	catRepo := fs.NewCategoryRepositoryFS(client)
	productRepo := fs.NewProductRepositoryFS(client)
	now := time.Now().UTC()

	// categories: Set で上書き（何度実行しても同じ結果）
	for _, sc := range categories {
		c, err := catdom.New(sc.id, sc.name, sc.description, "", "", now)
		if err != nil {
			log.Fatalf("[seed] category %s: %v", sc.id, err)
		}
		if _, err := catRepo.Save(ctx, c); err != nil {
			log.Fatalf("[seed] save category %s: %v", sc.id, err)
		}
	}
	log.Infof("[seed] %d categories upserted", len(categories))

	// products: 既存のドキュメントには触れない
	created := 0
	for _, sp := range products() {
		sp.in.IsFeatured = sp.featured
		p, err := productdom.New(sp.id, sp.in, now)
		if err != nil {
			log.Fatalf("[seed] product %s: %v", sp.id, err)
		}
		if _, err := productRepo.Create(ctx, p); err != nil {
			if errors.Is(err, common.ErrConflict) {
				continue
			}
			log.Fatalf("[seed] create product %s: %v", sp.id, err)
		}
		created++
	}
	log.Infof("[seed] %d products created", created)

	if *withAdmin {
		seedAdmin(ctx, inf, fs.NewUserRepositoryFS(client))
	}
}

func seedAdmin(ctx context.Context, inf *shared.Infra, users userdom.Repository) {
	log := logging.For("seed")
	email := strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL"))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("[seed] -admin needs SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD")
	}
	if inf.FirebaseAuth == nil {
		log.Fatal("[seed] Firebase Auth is not available")
	}

	userUC := uc.NewUserUsecase(users, identity.NewFirebaseIdentity(inf.FirebaseAuth), nil)
	system := uc.Actor{UserID: "seed", Role: userdom.RoleAdmin}
	u, err := userUC.Create(ctx, system, uc.CreateUserInput{
		RegisterInput: uc.RegisterInput{Email: email, Password: password, FirstName: "Store", LastName: "Admin"},
		Role:          userdom.RoleAdmin,
	})
	if errors.Is(err, common.ErrConflict) {
		log.Infof("[seed] admin %s already exists", email)
		return
	}
	if err != nil {
		log.Fatalf("[seed] admin: %v", err)
	}
	log.WithField("uid", u.ID).Infof("[seed] admin %s created", u.Email)
}
