package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/akylbek/transvoucher-go/apierror"
	"github.com/akylbek/transvoucher-go/interfaces"
	"github.com/akylbek/transvoucher-go/models"
	"github.com/akylbek/transvoucher-go/validator"
)

const defaultPaymentMethod = "card"

const invalidResponseFormat = "Invalid response format from API"

// PaymentService creates and inspects payments. Parameters are validated
// locally; an invalid call never reaches the transport.
type PaymentService struct {
	transport interfaces.Transport
	validator *validator.PaymentValidator
}

func NewPaymentService(transport interfaces.Transport, v *validator.PaymentValidator) *PaymentService {
	if v == nil {
		v = validator.New()
	}
	return &PaymentService{transport: transport, validator: v}
}

func (s *PaymentService) Create(ctx context.Context, params models.CreatePaymentParams) (*models.Payment, error) {
	if err := s.validator.ValidateCreate(params); err != nil {
		return nil, err
	}

	resp, err := s.transport.Post(ctx, "/payment/create", params)
	if err != nil {
		return nil, err
	}
	return paymentFromResponse(resp)
}

// Status fetches a payment by its transaction id.
func (s *PaymentService) Status(ctx context.Context, transactionID string) (*models.Payment, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, apierror.InvalidRequest("Transaction ID is required")
	}

	resp, err := s.transport.Get(ctx, "/payment/status/"+url.PathEscape(transactionID), nil)
	if err != nil {
		return nil, err
	}
	return paymentFromResponse(resp)
}

func (s *PaymentService) PaymentLinkStatus(ctx context.Context, paymentLinkID string) (*models.Payment, error) {
	if strings.TrimSpace(paymentLinkID) == "" {
		return nil, apierror.InvalidRequest("Payment link ID is required")
	}

	resp, err := s.transport.Get(ctx, "/payment-link/status/"+url.PathEscape(paymentLinkID), nil)
	if err != nil {
		return nil, err
	}
	return paymentFromResponse(resp)
}

func (s *PaymentService) List(ctx context.Context, params models.ListPaymentsParams) (*models.PaymentList, error) {
	if err := s.validator.ValidateList(params); err != nil {
		return nil, err
	}

	resp, err := s.transport.Get(ctx, "/payment/list", params.Query())
	if err != nil {
		return nil, err
	}

	data, err := dataObject(resp)
	if err != nil {
		return nil, err
	}
	list, err := models.PaymentListFromMap(data)
	if err != nil {
		return nil, apierror.API(invalidResponseFormat)
	}
	return list, nil
}

// GetConversionRate returns the raw rate object for a network, commodity
// and fiat currency. An empty paymentMethod means "card".
func (s *PaymentService) GetConversionRate(ctx context.Context, network, commodity, fiatCurrency, paymentMethod string) (map[string]any, error) {
	if err := s.validator.ValidateConversionRate(network, commodity, fiatCurrency); err != nil {
		return nil, err
	}
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	path := "/conversion-rate/" + strings.Join([]string{
		url.PathEscape(network),
		url.PathEscape(commodity),
		url.PathEscape(fiatCurrency),
		url.PathEscape(paymentMethod),
	}, "/")

	resp, err := s.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return dataObject(resp)
}

func paymentFromResponse(resp map[string]any) (*models.Payment, error) {
	data, err := dataObject(resp)
	if err != nil {
		return nil, err
	}
	payment, err := models.PaymentFromMap(data)
	if err != nil {
		return nil, apierror.API(invalidResponseFormat)
	}
	return payment, nil
}

func dataObject(resp map[string]any) (map[string]any, error) {
	data, ok := resp["data"].(map[string]any)
	if !ok {
		return nil, apierror.API(invalidResponseFormat)
	}
	return data, nil
}

func dataArray(resp map[string]any) ([]map[string]any, error) {
	items, ok := resp["data"].([]any)
	if !ok {
		return nil, apierror.API(invalidResponseFormat)
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, apierror.API(invalidResponseFormat)
		}
		out = append(out, m)
	}
	return out, nil
}
