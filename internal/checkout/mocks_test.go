package checkout

import (
	"context"
	"sync"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
	"github.com/03Sandip/gonotes-checkout/internal/pricing"
)

// mockGateway implements GatewayClient for testing.
type mockGateway struct {
	mu sync.Mutex

	order    *domain.Order
	orderErr error

	verifyErr   error
	verifyCalls int
	lastToken   string
	lastLines   []domain.CartLine
	lastCoupon  string
}

func (m *mockGateway) CreateOrder(_ context.Context, _ float64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.orderErr != nil {
		return nil, m.orderErr
	}
	return m.order, nil
}

func (m *mockGateway) Verify(_ context.Context, token string, _ domain.PaymentResult, lines []domain.CartLine, couponCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyCalls++
	m.lastToken = token
	m.lastLines = lines
	m.lastCoupon = couponCode
	return m.verifyErr
}

// mockPrompt records the opened order and captured callback so tests can
// fire the gateway completion themselves.
type mockPrompt struct {
	opened *domain.Order
	done   func(domain.PaymentResult)
}

func (m *mockPrompt) Open(order domain.Order, done func(domain.PaymentResult)) {
	m.opened = &order
	m.done = done
}

// mockValidator implements CouponValidator with a canned result.
type mockValidator struct {
	result pricing.ValidationResult
	calls  int
}

func (m *mockValidator) Validate(_ context.Context, _ string, _ float64) pricing.ValidationResult {
	m.calls++
	return m.result
}
