package interfaces

import (
	"context"

	"github.com/akylbek/transvoucher-go/models"
)

// PaymentGateway is the subset of the SDK payment service the HTTP
// handlers depend on.
type PaymentGateway interface {
	Create(ctx context.Context, params models.CreatePaymentParams) (*models.Payment, error)
	Status(ctx context.Context, transactionID string) (*models.Payment, error)
	PaymentLinkStatus(ctx context.Context, paymentLinkID string) (*models.Payment, error)
	List(ctx context.Context, params models.ListPaymentsParams) (*models.PaymentList, error)
	GetConversionRate(ctx context.Context, network, commodity, fiatCurrency, paymentMethod string) (map[string]any, error)
}

type CurrencyLister interface {
	All(ctx context.Context) ([]models.Currency, error)
}

type NetworkLister interface {
	All(ctx context.Context) ([]models.Network, error)
}

type CommodityLister interface {
	All(ctx context.Context) ([]models.Commodity, error)
}
