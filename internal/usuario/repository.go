package usuario

import (
	"context"
	"errors"

	"github.com/escritoriodigital/api/internal/memstore"
	"github.com/escritoriodigital/api/internal/util"
)

// Repository é a porta de armazenamento de usuários. Create deve rejeitar
// e-mail repetido de forma atômica com ErrEmailDuplicado.
type Repository interface {
	List(ctx context.Context) ([]Usuario, error)
	Get(ctx context.Context, id string) (*Usuario, error)
	Create(ctx context.Context, u Usuario) (*Usuario, error)
	Update(ctx context.Context, id string, fn func(u *Usuario) error) (*Usuario, error)
	Delete(ctx context.Context, id string) error
}

// MemoryRepository guarda usuários em uma coleção com cópia na escrita.
type MemoryRepository struct {
	items *memstore.Collection[Usuario]
}

// NewMemoryRepository cria o repositório com os registros iniciais.
func NewMemoryRepository(seed ...Usuario) *MemoryRepository {
	return &MemoryRepository{
		items: memstore.New(func(u Usuario) string { return u.ID }, Usuario.Clone, seed...),
	}
}

func (r *MemoryRepository) List(ctx context.Context) ([]Usuario, error) {
	return r.items.All(), nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Usuario, error) {
	u, err := r.items.Get(id)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *MemoryRepository) Create(ctx context.Context, u Usuario) (*Usuario, error) {
	err := r.items.InsertIf(u, func(current []Usuario) error {
		if emailTaken(current, u.Email, "") {
			return ErrEmailDuplicado
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return r.Get(ctx, u.ID)
}

func (r *MemoryRepository) Update(ctx context.Context, id string, fn func(u *Usuario) error) (*Usuario, error) {
	updated, err := r.items.Update(id, func(cur Usuario, all []Usuario) (Usuario, error) {
		if err := fn(&cur); err != nil {
			return cur, err
		}
		if emailTaken(all, cur.Email, cur.ID) {
			return cur, ErrEmailDuplicado
		}
		return cur, nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return &updated, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	return mapErr(r.items.Remove(id))
}

func emailTaken(users []Usuario, email, exceptID string) bool {
	want := util.NormalizeEmail(email)
	for _, u := range users {
		if u.ID != exceptID && util.NormalizeEmail(u.Email) == want {
			return true
		}
	}
	return false
}

func mapErr(err error) error {
	if errors.Is(err, memstore.ErrNotFound) {
		return ErrNaoEncontrado
	}
	return err
}
