package tarefa

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escritoriodigital/api/internal/db"
)

const columns = `id, tipo, nome, responsavel_id, prioridade, status, tags, inicio, fim, descricao,
        cliente_id, processo_id, valor_centavos, anexos, historico, criado_em, atualizado_em`

// PostgresRepository provê acesso à tabela tarefas.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository cria instância do repositório.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Tarefa, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM tarefas ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Tarefa
	for rows.Next() {
		t, err := scanTarefa(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Tarefa, error) {
	return scanTarefa(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM tarefas WHERE id = $1`, id))
}

func (r *PostgresRepository) Create(ctx context.Context, t Tarefa) (*Tarefa, error) {
	const query = `
        INSERT INTO tarefas (` + columns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING ` + columns

	return scanTarefa(r.pool.QueryRow(ctx, query, args(t)...))
}

// Update trava a linha, aplica fn e grava o resultado na mesma transação.
func (r *PostgresRepository) Update(ctx context.Context, id string, fn func(t *Tarefa) error) (*Tarefa, error) {
	var updated *Tarefa
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		current, err := scanTarefa(tx.QueryRow(ctx, `SELECT `+columns+` FROM tarefas WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if err := fn(current); err != nil {
			return err
		}

		const query = `
            UPDATE tarefas
            SET tipo = $2, nome = $3, responsavel_id = $4, prioridade = $5, status = $6, tags = $7,
                inicio = $8, fim = $9, descricao = $10, cliente_id = $11, processo_id = $12,
                valor_centavos = $13, anexos = $14, historico = $15, criado_em = $16, atualizado_em = $17
            WHERE id = $1
            RETURNING ` + columns

		updated, err = scanTarefa(tx.QueryRow(ctx, query, args(*current)...))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tarefas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNaoEncontrada
	}
	return nil
}

func args(t Tarefa) []any {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	anexos := t.Anexos
	if anexos == nil {
		anexos = []Anexo{}
	}
	historico := t.Historico
	if historico == nil {
		historico = []EntradaHistorico{}
	}
	return []any{
		t.ID, t.Tipo, t.Nome, t.ResponsavelID, t.Prioridade, t.Status, tags, t.Inicio, t.Fim,
		t.Descricao, t.ClienteID, t.ProcessoID, t.ValorCentavos, anexos, historico, t.CriadoEm, t.AtualizadoEm,
	}
}

func scanTarefa(row pgx.Row) (*Tarefa, error) {
	var t Tarefa
	err := row.Scan(&t.ID, &t.Tipo, &t.Nome, &t.ResponsavelID, &t.Prioridade, &t.Status, &t.Tags,
		&t.Inicio, &t.Fim, &t.Descricao, &t.ClienteID, &t.ProcessoID, &t.ValorCentavos, &t.Anexos,
		&t.Historico, &t.CriadoEm, &t.AtualizadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNaoEncontrada
		}
		return nil, err
	}
	return &t, nil
}
