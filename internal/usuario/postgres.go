package usuario

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escritoriodigital/api/internal/db"
)

const columns = `id, nome, cargo, telefone, email, perfil_acesso_id, especialidades, status,
        dados_bancarios, foto_url, documentos, auditoria, inativado_em, inativado_por, criado_em, atualizado_em`

// PostgresRepository provê acesso à tabela usuarios_internos.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository cria instância do repositório.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Usuario, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM usuarios_internos ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Usuario, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM usuarios_internos WHERE id = $1`, id)
	return scanUsuario(row)
}

func (r *PostgresRepository) Create(ctx context.Context, u Usuario) (*Usuario, error) {
	const query = `
        INSERT INTO usuarios_internos (` + columns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING ` + columns

	row := r.pool.QueryRow(ctx, query, args(u)...)
	created, err := scanUsuario(row)
	if isUniqueViolation(err) {
		return nil, ErrEmailDuplicado
	}
	return created, err
}

// Update trava a linha, aplica fn e grava o resultado na mesma transação.
func (r *PostgresRepository) Update(ctx context.Context, id string, fn func(u *Usuario) error) (*Usuario, error) {
	var updated *Usuario
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		current, err := scanUsuario(tx.QueryRow(ctx, `SELECT `+columns+` FROM usuarios_internos WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if err := fn(current); err != nil {
			return err
		}

		const query = `
            UPDATE usuarios_internos
            SET nome = $2, cargo = $3, telefone = $4, email = $5, perfil_acesso_id = $6,
                especialidades = $7, status = $8, dados_bancarios = $9, foto_url = $10,
                documentos = $11, auditoria = $12, inativado_em = $13, inativado_por = $14,
                criado_em = $15, atualizado_em = $16
            WHERE id = $1
            RETURNING ` + columns

		updated, err = scanUsuario(tx.QueryRow(ctx, query, args(*current)...))
		return err
	})
	if isUniqueViolation(err) {
		return nil, ErrEmailDuplicado
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM usuarios_internos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNaoEncontrado
	}
	return nil
}

func args(u Usuario) []any {
	especialidades := u.Especialidades
	if especialidades == nil {
		especialidades = []string{}
	}
	documentos := u.Documentos
	if documentos == nil {
		documentos = []Documento{}
	}
	auditoria := u.Auditoria
	if auditoria == nil {
		auditoria = []RegistroAuditoria{}
	}
	return []any{
		u.ID, u.Nome, u.Cargo, u.Telefone, u.Email, u.PerfilAcessoID, especialidades, u.Status,
		u.DadosBancarios, u.FotoURL, documentos, auditoria, u.InativadoEm, u.InativadoPor,
		u.CriadoEm, u.AtualizadoEm,
	}
}

func scanUsuario(row pgx.Row) (*Usuario, error) {
	var u Usuario
	err := row.Scan(&u.ID, &u.Nome, &u.Cargo, &u.Telefone, &u.Email, &u.PerfilAcessoID, &u.Especialidades,
		&u.Status, &u.DadosBancarios, &u.FotoURL, &u.Documentos, &u.Auditoria, &u.InativadoEm,
		&u.InativadoPor, &u.CriadoEm, &u.AtualizadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNaoEncontrado
		}
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
