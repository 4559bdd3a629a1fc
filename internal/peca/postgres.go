package peca

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escritoriodigital/api/internal/db"
)

const columns = `id, tipo, tipo_documento, titulo, conversa, dados_cliente, arquivo, compartilhamentos,
        criado_por, tokens_usados, criado_em, atualizado_em`

// PostgresRepository provê acesso à tabela pecas_juridicas.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository cria instância do repositório.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) List(ctx context.Context) ([]PecaJuridica, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM pecas_juridicas ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PecaJuridica
	for rows.Next() {
		p, err := scanPeca(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*PecaJuridica, error) {
	return scanPeca(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM pecas_juridicas WHERE id = $1`, id))
}

func (r *PostgresRepository) Create(ctx context.Context, p PecaJuridica) (*PecaJuridica, error) {
	const query = `
        INSERT INTO pecas_juridicas (` + columns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING ` + columns

	return scanPeca(r.pool.QueryRow(ctx, query, args(p)...))
}

// Update trava a linha, aplica fn e grava o resultado na mesma transação.
func (r *PostgresRepository) Update(ctx context.Context, id string, fn func(p *PecaJuridica) error) (*PecaJuridica, error) {
	var updated *PecaJuridica
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		current, err := scanPeca(tx.QueryRow(ctx, `SELECT `+columns+` FROM pecas_juridicas WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if err := fn(current); err != nil {
			return err
		}

		const query = `
            UPDATE pecas_juridicas
            SET tipo = $2, tipo_documento = $3, titulo = $4, conversa = $5, dados_cliente = $6,
                arquivo = $7, compartilhamentos = $8, criado_por = $9, tokens_usados = $10,
                criado_em = $11, atualizado_em = $12
            WHERE id = $1
            RETURNING ` + columns

		updated, err = scanPeca(tx.QueryRow(ctx, query, args(*current)...))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pecas_juridicas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNaoEncontrada
	}
	return nil
}

func args(p PecaJuridica) []any {
	conversa := p.Conversa
	if conversa == nil {
		conversa = []Mensagem{}
	}
	grants := p.Compartilhamentos
	if grants == nil {
		grants = []Compartilhamento{}
	}
	return []any{
		p.ID, p.Tipo, p.TipoDocumento, p.Titulo, conversa, p.DadosCliente, p.Arquivo, grants,
		p.CriadoPor, p.TokensUsados, p.CriadoEm, p.AtualizadoEm,
	}
}

func scanPeca(row pgx.Row) (*PecaJuridica, error) {
	var p PecaJuridica
	err := row.Scan(&p.ID, &p.Tipo, &p.TipoDocumento, &p.Titulo, &p.Conversa, &p.DadosCliente, &p.Arquivo,
		&p.Compartilhamentos, &p.CriadoPor, &p.TokensUsados, &p.CriadoEm, &p.AtualizadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNaoEncontrada
		}
		return nil, err
	}
	return &p, nil
}
