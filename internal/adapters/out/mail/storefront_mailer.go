// internal/adapters/out/mail/storefront_mailer.go
package mail

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/application/usecase"
	orderdom "storefront/internal/domain/order"
	userdom "storefront/internal/domain/user"
)

// StorefrontMailer implements usecase.NotifierPort on top of an EmailClient.
type StorefrontMailer struct {
	client      EmailClient
	fromAddress string
	shopName    string
}

var _ usecase.NotifierPort = (*StorefrontMailer)(nil)

func NewStorefrontMailer(client EmailClient, fromAddress, shopName string) *StorefrontMailer {
	if strings.TrimSpace(shopName) == "" {
		shopName = "Storefront"
	}
	return &StorefrontMailer{client: client, fromAddress: strings.TrimSpace(fromAddress), shopName: shopName}
}

func (m *StorefrontMailer) Welcome(ctx context.Context, u userdom.User) error {
	subject := fmt.Sprintf("Welcome to %s", m.shopName)
	body := fmt.Sprintf(`Hi %s,

Your %s account is ready. You can now browse the catalog, keep a cart
and track your orders.

-- 
%s`, greetingName(u), m.shopName, m.shopName)

	return m.client.Send(ctx, m.fromAddress, u.Email, subject, body)
}

func (m *StorefrontMailer) OrderPlaced(ctx context.Context, u userdom.User, o orderdom.Order) error {
	subject := fmt.Sprintf("[%s] Order %s received", m.shopName, o.ID)

	var lines strings.Builder
	for _, it := range o.Items {
		fmt.Fprintf(&lines, "  %d x %s  @ %s\n", it.Quantity, it.Name, it.Price.StringFixed(2))
	}
	s := o.ShippingAddress
	body := fmt.Sprintf(`Hi %s,

Thanks for your order. We will let you know when it ships.

Order   : %s
Status  : %s
Payment : %s

%s
Total   : %s

Ship to:
  %s %s
  %s
  %s, %s %s
  %s

-- 
%s`,
		greetingName(u),
		o.ID, o.Status, o.PaymentMethod,
		lines.String(),
		o.Total.StringFixed(2),
		s.FirstName, s.LastName, s.Street, s.City, s.State, s.ZipCode, s.Country,
		m.shopName,
	)

	return m.client.Send(ctx, m.fromAddress, u.Email, subject, body)
}

func greetingName(u userdom.User) string {
	if n := strings.TrimSpace(u.FirstName); n != "" {
		return n
	}
	return u.Email
}
