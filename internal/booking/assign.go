package booking

import (
	"context"
	"fmt"
	"unicode/utf16"

	"github.com/roach88/easybook/internal/model"
)

// AssignProvider picks a provider for category. The same category always
// maps to the same provider; load and availability are not considered.
// Reports false when there are no providers.
func (l *Ledger) AssignProvider(category string) (model.User, bool) {
	providers := l.providers()
	if len(providers) == 0 {
		return model.User{}, false
	}
	return providers[providerIndex(category, len(providers))], true
}

// CreateProviderRequest assigns a provider by service category and creates
// b as a pending request for them.
func (l *Ledger) CreateProviderRequest(ctx context.Context, b model.Booking) (model.Booking, error) {
	b, err := l.NewProviderRequest(b)
	if err != nil {
		return model.Booking{}, err
	}
	return l.insert(ctx, b)
}

// NewProviderRequest readies b as a pending request for the provider
// assigned to its category without storing it. The result is what
// CreateProviderRequest would store; AppendLocked stores it.
func (l *Ledger) NewProviderRequest(b model.Booking) (model.Booking, error) {
	provider, ok := l.AssignProvider(b.ServiceCategory)
	if !ok {
		return model.Booking{}, fmt.Errorf("assign provider for %q: no providers", b.ServiceCategory)
	}
	b.ProviderID = provider.ID
	b.ProviderName = provider.FullName()
	b.Status = model.StatusPending
	b, err := l.prepare(b)
	if err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	return b, nil
}

// providerIndex is |h| mod n where h is the 32-bit polynomial string hash
// (s[0]*31^(n-1) + ... + s[n-1]) over UTF-16 code units. The absolute value
// is taken in 64 bits so the minimum int32 hash stays non-negative.
func providerIndex(category string, n int) int {
	h := int64(stringHash(category))
	if h < 0 {
		h = -h
	}
	return int(h % int64(n))
}

func stringHash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(unit)
	}
	return h
}
