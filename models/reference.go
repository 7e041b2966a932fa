package models

import "fmt"

// Currency is a fiat currency supported by the API.
type Currency struct {
	ShortCode string `json:"short_code"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol,omitempty"`
}

// Network is a blockchain network a payment can settle on.
type Network struct {
	ShortCode string `json:"short_code"`
	Name      string `json:"name"`
}

// Commodity is a settlement asset, e.g. USDT.
type Commodity struct {
	ShortCode string `json:"short_code"`
	Name      string `json:"name"`
}

func CurrencyFromMap(data map[string]any) (Currency, error) {
	var c Currency
	if err := decodeMap(data, &c); err != nil {
		return Currency{}, fmt.Errorf("decode currency: %w", err)
	}
	return c, nil
}

func NetworkFromMap(data map[string]any) (Network, error) {
	var n Network
	if err := decodeMap(data, &n); err != nil {
		return Network{}, fmt.Errorf("decode network: %w", err)
	}
	return n, nil
}

func CommodityFromMap(data map[string]any) (Commodity, error) {
	var c Commodity
	if err := decodeMap(data, &c); err != nil {
		return Commodity{}, fmt.Errorf("decode commodity: %w", err)
	}
	return c, nil
}

func (c Currency) ToMap() map[string]any  { return encodeMap(c) }
func (n Network) ToMap() map[string]any   { return encodeMap(n) }
func (c Commodity) ToMap() map[string]any { return encodeMap(c) }
