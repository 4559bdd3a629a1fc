package notify

import (
	"context"
	"sync"
	"time"
)

// MemoryFeed guarda toasts em memória até expirarem.
type MemoryFeed struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	toasts []Toast
}

// NewMemoryFeed cria o feed com a duração de exibição informada.
func NewMemoryFeed(ttl time.Duration) *MemoryFeed {
	return &MemoryFeed{ttl: ttl, now: time.Now}
}

// Notify registra um toast.
func (f *MemoryFeed) Notify(ctx context.Context, tipo, mensagem string) error {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = append(visible(f.toasts, now), newToast(tipo, mensagem, now, f.ttl))
	return nil
}

// Active devolve os toasts ainda visíveis, do mais antigo ao mais recente.
func (f *MemoryFeed) Active(ctx context.Context) ([]Toast, error) {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = visible(f.toasts, now)
	return append([]Toast(nil), f.toasts...), nil
}
