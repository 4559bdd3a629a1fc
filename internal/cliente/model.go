// Package cliente expõe o cadastro de clientes e processos consultado pelas
// tarefas e pela integração de dados nas peças jurídicas.
package cliente

import (
	"context"
	"errors"

	"github.com/escritoriodigital/api/internal/memstore"
	"github.com/escritoriodigital/api/internal/util"
)

var ErrNaoEncontrado = util.NewUserError("cliente não encontrado")

// Cliente é a pessoa física ou jurídica atendida pelo escritório.
type Cliente struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Documento string `json:"documento"`
	Email     string `json:"email,omitempty"`
	Telefone  string `json:"telefone,omitempty"`
	Endereco  string `json:"endereco,omitempty"`
}

// Processo é um processo judicial vinculado a um cliente.
type Processo struct {
	ID        string `json:"id"`
	Numero    string `json:"numero"`
	Vara      string `json:"vara"`
	ClienteID string `json:"cliente_id"`
}

// Catalog é a consulta somente leitura de clientes e processos.
type Catalog interface {
	ListClientes(ctx context.Context) ([]Cliente, error)
	GetCliente(ctx context.Context, id string) (*Cliente, error)
	ListProcessos(ctx context.Context, clienteID string) ([]Processo, error)
}

// MemoryCatalog atende o catálogo a partir de coleções em memória.
type MemoryCatalog struct {
	clientes  *memstore.Collection[Cliente]
	processos *memstore.Collection[Processo]
}

// NewMemoryCatalog cria o catálogo com os registros informados.
func NewMemoryCatalog(clientes []Cliente, processos []Processo) *MemoryCatalog {
	return &MemoryCatalog{
		clientes:  memstore.New(func(c Cliente) string { return c.ID }, nil, clientes...),
		processos: memstore.New(func(p Processo) string { return p.ID }, nil, processos...),
	}
}

func (c *MemoryCatalog) ListClientes(ctx context.Context) ([]Cliente, error) {
	return c.clientes.All(), nil
}

func (c *MemoryCatalog) GetCliente(ctx context.Context, id string) (*Cliente, error) {
	cli, err := c.clientes.Get(id)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, ErrNaoEncontrado
	}
	if err != nil {
		return nil, err
	}
	return &cli, nil
}

// ListProcessos filtra por cliente; vazio devolve todos.
func (c *MemoryCatalog) ListProcessos(ctx context.Context, clienteID string) ([]Processo, error) {
	all := c.processos.All()
	if clienteID == "" {
		return all, nil
	}
	out := make([]Processo, 0, len(all))
	for _, p := range all {
		if p.ClienteID == clienteID {
			out = append(out, p)
		}
	}
	return out, nil
}
