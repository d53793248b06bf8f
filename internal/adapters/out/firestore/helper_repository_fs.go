// internal/adapters/out/firestore/helper_repository_fs.go
package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/internal/domain/common"
)

// Collection names.
const (
	colProducts   = "products"
	colCategories = "categories"
	colUsers      = "users"
	colCarts      = "carts"
	colOrders     = "orders"
)

var errNilClient = errors.New("firestore client is nil")

// ------------------------------------------------------------
// money: decimal in the domain, float64 in documents
// ------------------------------------------------------------

func toFloat(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toFloatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := toFloat(*d)
	return &f
}

func fromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

func fromFloatPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := fromFloat(*f)
	return &d
}

// ------------------------------------------------------------
// errors
// ------------------------------------------------------------

// mapReadErr converts a gRPC NotFound into the domain's not-found error.
func mapReadErr(err, notFound error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return notFound
	}
	return err
}

// mapCreateErr converts a gRPC AlreadyExists into the domain's conflict error.
func mapCreateErr(err, conflict error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.AlreadyExists {
		return conflict
	}
	return err
}

func alreadyExists(what string) error {
	return common.NewError(common.ErrConflict, what+" already exists")
}

// ------------------------------------------------------------
// iteration
// ------------------------------------------------------------

// collect drains q and decodes every document with decode.
func collect[T any](ctx context.Context, q firestore.Query, decode func(*firestore.DocumentSnapshot) (T, error)) ([]T, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	out := []T{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		v, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
