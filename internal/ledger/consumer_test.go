package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/transvoucher-go/internal/models"
)

type memoryLedger struct {
	mu       sync.Mutex
	entries  map[string]*models.LedgerEntry
	balances map[string]decimal.Decimal
	err      error
	failures int
	attempts int
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{entries: map[string]*models.LedgerEntry{}, balances: map[string]decimal.Decimal{}}
}

func (m *memoryLedger) Record(_ context.Context, e *models.LedgerEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.err != nil {
		return false, m.err
	}
	if m.failures > 0 {
		m.failures--
		return false, errors.New("connection reset")
	}
	if _, ok := m.entries[e.TransactionID]; ok {
		return false, nil
	}
	m.balances[e.Currency] = m.balances[e.Currency].Add(e.Amount)
	e.Balance = m.balances[e.Currency]
	m.entries[e.TransactionID] = e
	return true, nil
}

func (m *memoryLedger) GetBalance(_ context.Context, currency string) (*models.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &models.Balance{Currency: currency, Amount: m.balances[currency]}, nil
}

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

const completed = `{"type":"payment.completed","data":{"transaction_id":123,"amount":"100.10","currency":"usd"}}`

func TestEntryFromEvent(t *testing.T) {
	entry, err := EntryFromEvent([]byte(completed))
	require.NoError(t, err)

	assert.Equal(t, "123", entry.TransactionID)
	assert.Equal(t, "USD", entry.Currency)
	assert.True(t, entry.Amount.Equal(decimal.RequireFromString("100.10")))
}

func TestEntryFromEventRejectsUnbookable(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"type":"payment.failed","data":{"transaction_id":1,"amount":5,"currency":"USD"}}`,
		`{"type":"payment.completed"}`,
		`{"type":"payment.completed","data":{"amount":5,"currency":"USD"}}`,
		`{"type":"payment.completed","data":{"transaction_id":1,"amount":0,"currency":"USD"}}`,
		`{"type":"payment.completed","data":{"transaction_id":1,"amount":5}}`,
	}
	for _, body := range bodies {
		_, err := EntryFromEvent([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestHandleBooksOnce(t *testing.T) {
	repo := newMemoryLedger()
	c := NewConsumer(&fakeReader{}, repo)

	require.NoError(t, c.Handle(context.Background(), []byte(completed)))
	require.NoError(t, c.Handle(context.Background(), []byte(completed)))

	balance, err := repo.GetBalance(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, "100.1", balance.Amount.String())
	assert.Len(t, repo.entries, 1)
}

func TestHandleSkipsAndFails(t *testing.T) {
	repo := newMemoryLedger()
	c := NewConsumer(&fakeReader{}, repo)

	err := c.Handle(context.Background(), []byte(`{"type":"payment.refunded"}`))
	assert.True(t, errors.Is(err, ErrSkip))

	repo.err = errors.New("db down")
	err = c.Handle(context.Background(), []byte(completed))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSkip))
}

func TestRunCommitsBookedAndSkippedOnly(t *testing.T) {
	repo := newMemoryLedger()
	reader := &fakeReader{messages: []kafka.Message{
		{Key: []byte("123"), Value: []byte(completed)},
		{Key: []byte("x"), Value: []byte(`garbage`)},
	}}
	c := NewConsumer(reader, repo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return reader.committedCount() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRunRetriesFailedBookingBeforeMovingOn(t *testing.T) {
	repo := newMemoryLedger()
	repo.failures = 2
	second := `{"type":"payment.completed","data":{"transaction_id":456,"amount":"5","currency":"USD"}}`
	reader := &fakeReader{messages: []kafka.Message{
		{Key: []byte("123"), Value: []byte(completed)},
		{Key: []byte("456"), Value: []byte(second)},
	}}
	c := NewConsumer(reader, repo)
	c.retryBackoff = time.Millisecond
	c.maxBackoff = 2 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return reader.committedCount() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Contains(t, repo.entries, "123")
	assert.Contains(t, repo.entries, "456")
	assert.Equal(t, 4, repo.attempts)

	reader.mu.Lock()
	defer reader.mu.Unlock()
	assert.Equal(t, "123", string(reader.committed[0].Key))
	assert.Equal(t, "456", string(reader.committed[1].Key))
}

func TestRunStopsRetryingWhenCanceled(t *testing.T) {
	repo := newMemoryLedger()
	repo.err = errors.New("db down")
	reader := &fakeReader{messages: []kafka.Message{{Key: []byte("123"), Value: []byte(completed)}}}
	c := NewConsumer(reader, repo)
	c.retryBackoff = time.Millisecond
	c.maxBackoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.attempts >= 3
	}, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, reader.committedCount())
}
