package services

import (
	"context"

	"github.com/akylbek/transvoucher-go/apierror"
	"github.com/akylbek/transvoucher-go/interfaces"
	"github.com/akylbek/transvoucher-go/models"
)

type CurrencyService struct {
	transport interfaces.Transport
}

func NewCurrencyService(transport interfaces.Transport) *CurrencyService {
	return &CurrencyService{transport: transport}
}

// All lists the fiat currencies the API accepts.
func (s *CurrencyService) All(ctx context.Context) ([]models.Currency, error) {
	return listAll(ctx, s.transport, "/currencies", models.CurrencyFromMap)
}

type NetworkService struct {
	transport interfaces.Transport
}

func NewNetworkService(transport interfaces.Transport) *NetworkService {
	return &NetworkService{transport: transport}
}

func (s *NetworkService) All(ctx context.Context) ([]models.Network, error) {
	return listAll(ctx, s.transport, "/networks", models.NetworkFromMap)
}

type CommodityService struct {
	transport interfaces.Transport
}

func NewCommodityService(transport interfaces.Transport) *CommodityService {
	return &CommodityService{transport: transport}
}

func (s *CommodityService) All(ctx context.Context) ([]models.Commodity, error) {
	return listAll(ctx, s.transport, "/commodities", models.CommodityFromMap)
}

func listAll[T any](ctx context.Context, t interfaces.Transport, path string, decode func(map[string]any) (T, error)) ([]T, error) {
	resp, err := t.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	items, err := dataArray(resp)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		v, err := decode(item)
		if err != nil {
			return nil, apierror.API(invalidResponseFormat)
		}
		out = append(out, v)
	}
	return out, nil
}
