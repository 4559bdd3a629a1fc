package peca

import (
	"context"
	"errors"

	"github.com/escritoriodigital/api/internal/memstore"
)

// Repository é a porta de armazenamento de peças.
type Repository interface {
	List(ctx context.Context) ([]PecaJuridica, error)
	Get(ctx context.Context, id string) (*PecaJuridica, error)
	Create(ctx context.Context, p PecaJuridica) (*PecaJuridica, error)
	Update(ctx context.Context, id string, fn func(p *PecaJuridica) error) (*PecaJuridica, error)
	Delete(ctx context.Context, id string) error
}

// MemoryRepository guarda peças em memória.
type MemoryRepository struct {
	items *memstore.Collection[PecaJuridica]
}

// NewMemoryRepository cria o repositório com os registros iniciais.
func NewMemoryRepository(seed ...PecaJuridica) *MemoryRepository {
	return &MemoryRepository{
		items: memstore.New(func(p PecaJuridica) string { return p.ID }, PecaJuridica.Clone, seed...),
	}
}

func (r *MemoryRepository) List(ctx context.Context) ([]PecaJuridica, error) {
	return r.items.All(), nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*PecaJuridica, error) {
	p, err := r.items.Get(id)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *MemoryRepository) Create(ctx context.Context, p PecaJuridica) (*PecaJuridica, error) {
	if err := r.items.Insert(p); err != nil {
		return nil, err
	}
	return r.Get(ctx, p.ID)
}

func (r *MemoryRepository) Update(ctx context.Context, id string, fn func(p *PecaJuridica) error) (*PecaJuridica, error) {
	updated, err := r.items.Update(id, func(cur PecaJuridica, _ []PecaJuridica) (PecaJuridica, error) {
		err := fn(&cur)
		return cur, err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return &updated, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	return mapErr(r.items.Remove(id))
}

func mapErr(err error) error {
	if errors.Is(err, memstore.ErrNotFound) {
		return ErrNaoEncontrada
	}
	return err
}
