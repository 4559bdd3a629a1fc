// Package memstore guarda coleções em memória com cópia na escrita: cada
// mutação produz uma nova fatia e nenhum elemento é alterado no lugar.
package memstore

import (
	"errors"
	"slices"
	"sync"
)

var (
	ErrNotFound  = errors.New("memstore: registro não encontrado")
	ErrDuplicate = errors.New("memstore: identificador já existe")
)

// Collection é segura para uso concorrente. Escritas simultâneas são
// serializadas e cada uma parte do estado mais recente.
type Collection[T any] struct {
	id    func(T) string
	clone func(T) T

	mu    sync.RWMutex
	items []T
}

// New cria a coleção. clone deve copiar fatias e ponteiros internos do
// registro; pode ser nil para tipos sem campos compartilháveis.
func New[T any](id func(T) string, clone func(T) T, seed ...T) *Collection[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	c := &Collection[T]{id: id, clone: clone}
	c.items = make([]T, 0, len(seed))
	for _, item := range seed {
		c.items = append(c.items, clone(item))
	}
	return c
}

// All devolve cópias de todos os registros na ordem de inserção.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	items := c.items
	c.mu.RUnlock()

	out := make([]T, len(items))
	for i, item := range items {
		out[i] = c.clone(item)
	}
	return out
}

// Len devolve o tamanho atual.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get busca por identificador.
func (c *Collection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.index(id); i >= 0 {
		return c.clone(c.items[i]), nil
	}
	var zero T
	return zero, ErrNotFound
}

// Find devolve o primeiro registro que satisfaz o predicado.
func (c *Collection[T]) Find(match func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if match(item) {
			return c.clone(item), true
		}
	}
	var zero T
	return zero, false
}

// Insert acrescenta o registro ao final.
func (c *Collection[T]) Insert(item T) error {
	return c.InsertIf(item, nil)
}

// InsertIf acrescenta o registro se check, avaliado sob a trava de escrita
// contra o estado atual, não devolver erro.
func (c *Collection[T]) InsertIf(item T, check func(current []T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index(c.id(item)) >= 0 {
		return ErrDuplicate
	}
	if check != nil {
		if err := check(c.items); err != nil {
			return err
		}
	}
	next := make([]T, len(c.items), len(c.items)+1)
	copy(next, c.items)
	c.items = append(next, c.clone(item))
	return nil
}

// Update aplica fn ao registro atual e substitui o resultado de forma
// atômica. Se fn falhar a coleção fica intacta.
func (c *Collection[T]) Update(id string, fn func(current T, all []T) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	i := c.index(id)
	if i < 0 {
		return zero, ErrNotFound
	}
	updated, err := fn(c.clone(c.items[i]), c.items)
	if err != nil {
		return zero, err
	}
	if c.id(updated) != id {
		return zero, errors.New("memstore: identificador não pode mudar")
	}

	next := slices.Clone(c.items)
	next[i] = c.clone(updated)
	c.items = next
	return c.clone(updated), nil
}

// Remove exclui o registro pelo identificador.
func (c *Collection[T]) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return ErrNotFound
	}
	next := make([]T, 0, len(c.items)-1)
	next = append(next, c.items[:i]...)
	next = append(next, c.items[i+1:]...)
	c.items = next
	return nil
}

func (c *Collection[T]) index(id string) int {
	for i, item := range c.items {
		if c.id(item) == id {
			return i
		}
	}
	return -1
}
