package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/akylbek/transvoucher-go/internal/models"
	"github.com/akylbek/transvoucher-go/internal/repository"
	sdk "github.com/akylbek/transvoucher-go/models"
)

type fakePayments struct {
	payment    *sdk.Payment
	list       *sdk.PaymentList
	rate       map[string]any
	err        error
	created    []sdk.CreatePaymentParams
	listed     []sdk.ListPaymentsParams
	lastID     string
	rateMethod string
}

func (f *fakePayments) Create(_ context.Context, p sdk.CreatePaymentParams) (*sdk.Payment, error) {
	f.created = append(f.created, p)
	return f.payment, f.err
}

func (f *fakePayments) Status(_ context.Context, id string) (*sdk.Payment, error) {
	f.lastID = id
	return f.payment, f.err
}

func (f *fakePayments) PaymentLinkStatus(_ context.Context, id string) (*sdk.Payment, error) {
	f.lastID = id
	return f.payment, f.err
}

func (f *fakePayments) List(_ context.Context, p sdk.ListPaymentsParams) (*sdk.PaymentList, error) {
	f.listed = append(f.listed, p)
	return f.list, f.err
}

func (f *fakePayments) GetConversionRate(_ context.Context, _, _, _, method string) (map[string]any, error) {
	f.rateMethod = method
	return f.rate, f.err
}

type fakeCurrencies struct{ items []sdk.Currency }

func (f fakeCurrencies) All(context.Context) ([]sdk.Currency, error) { return f.items, nil }

type fakeNetworks struct{ err error }

func (f fakeNetworks) All(context.Context) ([]sdk.Network, error) { return nil, f.err }

type fakeCommodities struct{}

func (fakeCommodities) All(context.Context) ([]sdk.Commodity, error) {
	return []sdk.Commodity{{ShortCode: "USDT", Name: "Tether"}}, nil
}

type fakeWebhookRepo struct {
	mu        sync.Mutex
	byHash    map[string]*models.WebhookRecord
	published map[string]bool
	err       error
}

func newFakeWebhookRepo() *fakeWebhookRepo {
	return &fakeWebhookRepo{byHash: map[string]*models.WebhookRecord{}, published: map[string]bool{}}
}

func (f *fakeWebhookRepo) Save(_ context.Context, r *models.WebhookRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.byHash[r.PayloadHash]; ok {
		return false, nil
	}
	f.byHash[r.PayloadHash] = r
	return true, nil
}

func (f *fakeWebhookRepo) GetByID(_ context.Context, id string) (*models.WebhookRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byHash {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeWebhookRepo) MarkPublished(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[id] = true
	return nil
}

func (f *fakeWebhookRepo) ListUnpublished(_ context.Context, cutoff time.Time, limit int) ([]*models.WebhookRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.WebhookRecord
	for _, r := range f.byHash {
		if !f.published[r.ID] && r.ReceivedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type published struct {
	topic   string
	key     string
	payload string
}

type fakePublisher struct {
	events []published
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, topic, key string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, published{topic: topic, key: key, payload: string(payload)})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeLedgerRepo struct {
	balance *models.Balance
	err     error
}

func (f *fakeLedgerRepo) Record(context.Context, *models.LedgerEntry) (bool, error) { return true, nil }

func (f *fakeLedgerRepo) GetBalance(context.Context, string) (*models.Balance, error) {
	return f.balance, f.err
}
