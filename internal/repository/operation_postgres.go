package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opcopilot/opcopilot/internal/domain"
)

type postgresOperationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOperationRepository returns a Postgres-backed implementation.
func NewPostgresOperationRepository(pool *pgxpool.Pool) OperationRepository {
	return &postgresOperationRepository{pool: pool}
}

const operationColumns = `id, name, type, municipality, status, progress, budget, units,
        created_at, start_date, end_date, blockers, aco`

func (r *postgresOperationRepository) Create(ctx context.Context, op *domain.Operation, phases []domain.Phase) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertOp = `
        INSERT INTO operations (` + operationColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	if _, err := tx.Exec(ctx, insertOp,
		op.ID,
		op.Name,
		op.Type,
		op.Municipality,
		op.Status,
		op.Progress,
		op.Budget,
		op.Units,
		op.CreatedAt,
		op.StartDate,
		op.EndDate,
		op.Blockers,
		op.ACO,
	); err != nil {
		return err
	}

	const insertPhase = `
        INSERT INTO operation_phases (operation_id, position, name, start_date, end_date, status, responsible, critical)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	batch := &pgx.Batch{}
	for i, p := range phases {
		batch.Queue(insertPhase, op.ID, i, p.Name, p.Start, p.End, p.Status, p.Responsible, p.Critical)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresOperationRepository) Update(ctx context.Context, op *domain.Operation) error {
	const query = `
        UPDATE operations SET name=$1, type=$2, municipality=$3, status=$4, progress=$5, budget=$6,
            units=$7, start_date=$8, end_date=$9, blockers=$10, aco=$11
        WHERE id=$12`

	cmd, err := r.pool.Exec(ctx, query,
		op.Name,
		op.Type,
		op.Municipality,
		op.Status,
		op.Progress,
		op.Budget,
		op.Units,
		op.StartDate,
		op.EndDate,
		op.Blockers,
		op.ACO,
		op.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresOperationRepository) GetByID(ctx context.Context, id string) (*domain.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE id=$1`

	op, err := scanOperation(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}

func (r *postgresOperationRepository) List(ctx context.Context, filter OperationFilter) ([]domain.Operation, error) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, val any) {
		args = append(args, val)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if filter.ACO != "" {
		add("lower(aco) = lower($%d)", filter.ACO)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR municipality ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + operationColumns + ` FROM operations`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *op)
	}
	return result, rows.Err()
}

func (r *postgresOperationRepository) ListPhases(ctx context.Context, operationID string) ([]domain.Phase, error) {
	const query = `
        SELECT name, start_date, end_date, status, responsible, critical
        FROM operation_phases WHERE operation_id=$1 ORDER BY position ASC`
	rows, err := r.pool.Query(ctx, query, operationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Phase
	for rows.Next() {
		var p domain.Phase
		if err := rows.Scan(&p.Name, &p.Start, &p.End, &p.Status, &p.Responsible, &p.Critical); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if result == nil {
		if _, err := r.GetByID(ctx, operationID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func scanOperation(row pgx.Row) (*domain.Operation, error) {
	var op domain.Operation
	if err := row.Scan(
		&op.ID,
		&op.Name,
		&op.Type,
		&op.Municipality,
		&op.Status,
		&op.Progress,
		&op.Budget,
		&op.Units,
		&op.CreatedAt,
		&op.StartDate,
		&op.EndDate,
		&op.Blockers,
		&op.ACO,
	); err != nil {
		return nil, err
	}
	return &op, nil
}
