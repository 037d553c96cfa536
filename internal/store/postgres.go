package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olivramos/beneficioops/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS beneficios (
    id        BIGINT PRIMARY KEY,
    nome      TEXT NOT NULL,
    descricao TEXT NOT NULL DEFAULT '',
    valor     NUMERIC(15,2) NOT NULL CHECK (valor >= 0),
    ativo     BOOLEAN NOT NULL,
    version   BIGINT NOT NULL
)`

// Postgres is the pgx-backed persistence collaborator. It is not a Store:
// the in-memory store stays authoritative and mirrors accepted mutations
// here so they survive restarts.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// EnsureSchema creates the beneficios table when it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// LoadAll returns every persisted record ordered by id. Ids are assigned
// monotonically, so id order matches insertion order.
func (p *Postgres) LoadAll(ctx context.Context) ([]domain.Benefit, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT id, nome, descricao, valor, ativo, version FROM beneficios ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("load beneficios: %w", err)
	}
	defer rows.Close()

	var out []domain.Benefit
	for rows.Next() {
		var b domain.Benefit
		if err := rows.Scan(&b.ID, &b.Nome, &b.Descricao, &b.Valor, &b.Ativo, &b.Version); err != nil {
			return nil, fmt.Errorf("scan beneficio: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Persist upserts one record after an accepted mutation.
func (p *Postgres) Persist(ctx context.Context, b domain.Benefit) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO beneficios (id, nome, descricao, valor, ativo, version)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET nome = $2, descricao = $3, valor = $4, ativo = $5, version = $6`,
		b.ID, b.Nome, b.Descricao, b.Valor, b.Ativo, b.Version)
	if err != nil {
		return fmt.Errorf("persist beneficio %d: %w", b.ID, err)
	}
	return nil
}

// Remove deletes one record after an accepted delete.
func (p *Postgres) Remove(ctx context.Context, id int64) error {
	if _, err := p.pool.Exec(ctx, "DELETE FROM beneficios WHERE id = $1", id); err != nil {
		return fmt.Errorf("remove beneficio %d: %w", id, err)
	}
	return nil
}
