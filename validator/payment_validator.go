package validator

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	playground "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/akylbek/transvoucher-go/apierror"
	"github.com/akylbek/transvoucher-go/models"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 1000
	minListLimit         = 1
	maxListLimit         = 100
	dateLayout           = "2006-01-02"
)

var (
	SupportedCurrencies  = []string{"USD", "EUR"}
	SupportedLanguages   = []string{"en", "es", "fr", "de", "it", "pt", "ru", "zh", "ja", "ko"}
	SupportedNetworks    = []string{"POL", "BSC"}
	SupportedCommodities = []string{"USDT"}

	minimumAmount = decimal.RequireFromString("0.01")

	expiryLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		dateLayout,
	}
)

// PaymentValidator checks request parameters before they are sent. Every
// check stops at the first violation and returns an invalid request error.
type PaymentValidator struct {
	syntax *playground.Validate
	now    func() time.Time
}

type Option func(*PaymentValidator)

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(v *PaymentValidator) {
		if now != nil {
			v.now = now
		}
	}
}

func New(opts ...Option) *PaymentValidator {
	v := &PaymentValidator{
		syntax: playground.New(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *PaymentValidator) ValidateCreate(p models.CreatePaymentParams) error {
	if strings.TrimSpace(p.Amount.String()) == "" {
		return invalid("Amount is required")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(p.Amount.String()))
	if err != nil || amount.LessThan(minimumAmount) {
		return invalid("Amount must be a number greater than or equal to 0.01")
	}

	if p.Currency != "" && !contains(SupportedCurrencies, strings.ToUpper(p.Currency)) {
		return invalid("Currency must be one of: " + strings.Join(SupportedCurrencies, ", "))
	}

	urls := []struct {
		value, label string
	}{
		{p.RedirectURL, "redirect"},
		{p.SuccessURL, "success"},
		{p.CancelURL, "cancel"},
		{p.CloseURL, "close"},
	}
	for _, u := range urls {
		if u.value != "" && !v.isURL(u.value) {
			return invalid(fmt.Sprintf("Invalid %s URL", u.label))
		}
	}

	if p.Lang != "" && !contains(SupportedLanguages, p.Lang) {
		return invalid("Language must be one of: " + strings.Join(SupportedLanguages, ", "))
	}

	if utf8.RuneCountInString(p.Title) > maxTitleLength {
		return invalid(fmt.Sprintf("Title must not exceed %d characters", maxTitleLength))
	}
	if utf8.RuneCountInString(p.Description) > maxDescriptionLength {
		return invalid(fmt.Sprintf("Description must not exceed %d characters", maxDescriptionLength))
	}

	if p.ExpiresAt != "" {
		expires, ok := parseExpiry(p.ExpiresAt)
		if !ok || !expires.After(v.now()) {
			return invalid("Expiration date must be in the future")
		}
	}

	if p.CustomerEmail != "" && !v.isEmail(p.CustomerEmail) {
		return invalid("Invalid email address")
	}
	if email, ok := p.CustomerDetails["email"]; ok && email != "" && !v.isEmail(email) {
		return invalid("Invalid email address")
	}

	return nil
}

// CheckCustomFields validates an undecoded custom_fields value: it must be
// absent or a JSON object.
func CheckCustomFields(raw any) error {
	switch raw.(type) {
	case nil, map[string]any:
		return nil
	default:
		return invalid("Custom fields must be an array")
	}
}

func (v *PaymentValidator) ValidateList(p models.ListPaymentsParams) error {
	if p.Limit != nil && (*p.Limit < minListLimit || *p.Limit > maxListLimit) {
		return invalid(fmt.Sprintf("Limit must be an integer between %d and %d", minListLimit, maxListLimit))
	}

	if p.Status != "" && !isPaymentStatus(p.Status) {
		names := make([]string, len(models.PaymentStatuses))
		for i, s := range models.PaymentStatuses {
			names[i] = string(s)
		}
		return invalid("Status must be one of: " + strings.Join(names, ", "))
	}

	var from, to time.Time
	var ok bool
	if p.FromDate != "" {
		if from, ok = parseDate(p.FromDate); !ok {
			return invalid("from_date must be in YYYY-MM-DD format")
		}
	}
	if p.ToDate != "" {
		if to, ok = parseDate(p.ToDate); !ok {
			return invalid("to_date must be in YYYY-MM-DD format")
		}
	}
	if p.FromDate != "" && p.ToDate != "" && from.After(to) {
		return invalid("from_date must be before or equal to to_date")
	}

	return nil
}

func (v *PaymentValidator) ValidateConversionRate(network, commodity, fiat string) error {
	if !contains(SupportedNetworks, strings.ToUpper(network)) {
		return invalid("Network must be one of: " + strings.Join(SupportedNetworks, ", "))
	}
	if !contains(SupportedCommodities, strings.ToUpper(commodity)) {
		return invalid("Commodity must be one of: " + strings.Join(SupportedCommodities, ", "))
	}
	if !contains(SupportedCurrencies, strings.ToUpper(fiat)) {
		return invalid("Fiat currency must be one of: " + strings.Join(SupportedCurrencies, ", "))
	}
	return nil
}

func (v *PaymentValidator) isURL(s string) bool {
	return v.syntax.Var(s, "url") == nil
}

func (v *PaymentValidator) isEmail(s string) bool {
	return v.syntax.Var(s, "email") == nil
}

func isPaymentStatus(s string) bool {
	for _, status := range models.PaymentStatuses {
		if string(status) == s {
			return true
		}
	}
	return false
}

// parseDate accepts only zero-padded calendar dates that exist.
func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	if err != nil || t.Format(dateLayout) != s {
		return time.Time{}, false
	}
	return t, true
}

func parseExpiry(s string) (time.Time, bool) {
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func invalid(msg string) error {
	return apierror.InvalidRequest(msg)
}
