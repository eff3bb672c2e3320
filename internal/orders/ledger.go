package orders

import (
	"context"
	"sync"
)

// StockLedger réserve une commande avant de décrémenter le stock : un
// webhook rejoué ne décrémente qu'une fois. Claim retourne false si la
// commande a déjà été réservée.
type StockLedger interface {
	Claim(ctx context.Context, recordID string) (bool, error)
}

// MemoryLedger est le registre en mémoire (mode dev, tests)
type MemoryLedger struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{claimed: make(map[string]struct{})}
}

func (l *MemoryLedger) Claim(ctx context.Context, recordID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.claimed[recordID]; ok {
		return false, nil
	}
	l.claimed[recordID] = struct{}{}
	return true, nil
}
