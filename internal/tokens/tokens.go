// Package tokens controla o saldo de tokens do plano contratado. Toda
// cobrança passa por reserva atômica antes da chamada ao redator.
package tokens

import (
	"context"
	"sync"
	"time"

	"github.com/escritoriodigital/api/internal/util"
)

// ErrSaldoInsuficiente indica que a reserva ultrapassaria o limite do plano.
var ErrSaldoInsuficiente = util.NewUserError("Saldo de tokens insuficiente para esta operação")

// ControleTokens é a fotografia do saldo exposta à interface.
type ControleTokens struct {
	Plano       string    `json:"plano"`
	Usados      int       `json:"tokens_usados"`
	Disponiveis int       `json:"tokens_restantes"`
	Limite      int       `json:"limite"`
	Renovacao   time.Time `json:"renovacao"`
}

// Plan descreve o plano contratado.
type Plan struct {
	Nome      string
	Limite    int
	Renovacao time.Duration
}

// Store guarda o contador de uso. Reserve e Adjust precisam ser atômicos.
type Store interface {
	Used(ctx context.Context) (int, error)
	// Reserve soma n ao uso se o resultado não passar de limit.
	Reserve(ctx context.Context, n, limit int) (int, error)
	// Adjust soma delta ao uso, limitado a [0, limit], e devolve quanto
	// foi efetivamente aplicado.
	Adjust(ctx context.Context, delta, limit int) (int, error)
	Reset(ctx context.Context) error
}

// Budget combina o plano com o contador.
type Budget struct {
	store Store
	plan  Plan
	now   func() time.Time

	mu        sync.Mutex
	renovacao time.Time
}

// NewBudget cria o controle de saldo. A próxima renovação é contada a
// partir da criação.
func NewBudget(store Store, plan Plan) *Budget {
	b := &Budget{store: store, plan: plan, now: time.Now}
	b.renovacao = b.now().Add(plan.Renovacao)
	return b
}

// Get devolve o saldo atual, renovando o plano se a data já passou.
func (b *Budget) Get(ctx context.Context) (ControleTokens, error) {
	if err := b.renewIfDue(ctx); err != nil {
		return ControleTokens{}, err
	}
	used, err := b.store.Used(ctx)
	if err != nil {
		return ControleTokens{}, err
	}
	return b.snapshot(used), nil
}

// Reserve separa n tokens ou falha com ErrSaldoInsuficiente sem alterar o saldo.
func (b *Budget) Reserve(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	if err := b.renewIfDue(ctx); err != nil {
		return err
	}
	_, err := b.store.Reserve(ctx, n, b.plan.Limite)
	return err
}

// Settle troca a reserva pelo custo real e devolve o total cobrado. O uso
// nunca ultrapassa o limite: o excedente é absorvido.
func (b *Budget) Settle(ctx context.Context, reserved, actual int) (int, error) {
	applied, err := b.store.Adjust(ctx, actual-reserved, b.plan.Limite)
	if err != nil {
		return 0, err
	}
	return reserved + applied, nil
}

// Release devolve uma reserva não utilizada.
func (b *Budget) Release(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := b.store.Adjust(ctx, -n, b.plan.Limite)
	return err
}

// Reset zera o uso e agenda a próxima renovação.
func (b *Budget) Reset(ctx context.Context) (ControleTokens, error) {
	b.mu.Lock()
	err := b.resetLocked(ctx)
	b.mu.Unlock()
	if err != nil {
		return ControleTokens{}, err
	}
	return b.snapshot(0), nil
}

// renewIfDue confere e renova sob o mesmo lock; quem chega depois já vê a
// nova data e não zera reservas feitas entre as duas chamadas.
func (b *Budget) renewIfDue(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.plan.Renovacao <= 0 || b.now().Before(b.renovacao) {
		return nil
	}
	return b.resetLocked(ctx)
}

func (b *Budget) resetLocked(ctx context.Context) error {
	if err := b.store.Reset(ctx); err != nil {
		return err
	}
	b.renovacao = b.now().Add(b.plan.Renovacao)
	return nil
}

func (b *Budget) snapshot(used int) ControleTokens {
	b.mu.Lock()
	renovacao := b.renovacao
	b.mu.Unlock()

	disponiveis := b.plan.Limite - used
	if disponiveis < 0 {
		disponiveis = 0
	}
	return ControleTokens{
		Plano:       b.plan.Nome,
		Usados:      used,
		Disponiveis: disponiveis,
		Limite:      b.plan.Limite,
		Renovacao:   renovacao,
	}
}

// MemoryStore mantém o contador no processo.
type MemoryStore struct {
	mu   sync.Mutex
	used int
}

// NewMemoryStore cria o contador com um uso inicial.
func NewMemoryStore(used int) *MemoryStore {
	return &MemoryStore{used: used}
}

func (s *MemoryStore) Used(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used, nil
}

func (s *MemoryStore) Reserve(ctx context.Context, n, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.used+n > limit {
		return s.used, ErrSaldoInsuficiente
	}
	s.used += n
	return s.used, nil
}

func (s *MemoryStore) Adjust(ctx context.Context, delta, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := min(max(s.used+delta, 0), limit)
	applied := next - s.used
	s.used = next
	return applied, nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.used = 0
	s.mu.Unlock()
	return nil
}
