package tarefa

import (
	"context"
	"errors"

	"github.com/escritoriodigital/api/internal/memstore"
)

// Repository é a porta de armazenamento de tarefas.
type Repository interface {
	List(ctx context.Context) ([]Tarefa, error)
	Get(ctx context.Context, id string) (*Tarefa, error)
	Create(ctx context.Context, t Tarefa) (*Tarefa, error)
	Update(ctx context.Context, id string, fn func(t *Tarefa) error) (*Tarefa, error)
	Delete(ctx context.Context, id string) error
}

// MemoryRepository guarda tarefas em memória.
type MemoryRepository struct {
	items *memstore.Collection[Tarefa]
}

// NewMemoryRepository cria o repositório com os registros iniciais.
func NewMemoryRepository(seed ...Tarefa) *MemoryRepository {
	return &MemoryRepository{
		items: memstore.New(func(t Tarefa) string { return t.ID }, Tarefa.Clone, seed...),
	}
}

func (r *MemoryRepository) List(ctx context.Context) ([]Tarefa, error) {
	return r.items.All(), nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Tarefa, error) {
	t, err := r.items.Get(id)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *MemoryRepository) Create(ctx context.Context, t Tarefa) (*Tarefa, error) {
	if err := r.items.Insert(t); err != nil {
		return nil, err
	}
	return r.Get(ctx, t.ID)
}

func (r *MemoryRepository) Update(ctx context.Context, id string, fn func(t *Tarefa) error) (*Tarefa, error) {
	updated, err := r.items.Update(id, func(cur Tarefa, _ []Tarefa) (Tarefa, error) {
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
