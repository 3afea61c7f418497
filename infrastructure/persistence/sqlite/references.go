package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

type referenceRepository struct {
	db   *sql.DB
	kind valueobjects.EntityKind
}

func (r *referenceRepository) Kind() valueobjects.EntityKind { return r.kind }

func (r *referenceRepository) FindByName(ctx context.Context, name string) (*entities.ReferenceEntity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, protein_per_100g FROM reference_entities WHERE kind = ? AND name = ?`,
		string(r.kind), name)
	entity, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return entity, err
}

func (r *referenceRepository) GetByID(ctx context.Context, id valueobjects.ID) (*entities.ReferenceEntity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, protein_per_100g FROM reference_entities WHERE kind = ? AND id = ?`,
		string(r.kind), id.String())
	entity, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError(r.kind.Label())
	}
	return entity, err
}

func (r *referenceRepository) List(ctx context.Context) ([]*entities.ReferenceEntity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, protein_per_100g FROM reference_entities WHERE kind = ? ORDER BY name`,
		string(r.kind))
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list "+string(r.kind), err)
	}
	defer rows.Close()

	var out []*entities.ReferenceEntity
	for rows.Next() {
		entity, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("list "+string(r.kind), err)
	}
	return out, nil
}

func (r *referenceRepository) Create(ctx context.Context, entity *entities.ReferenceEntity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reference_entities (kind, id, name, protein_per_100g) VALUES (?, ?, ?, ?)`,
		string(r.kind), entity.ID().String(), entity.Name(), nullFloat(entity.ProteinPer100g()))
	if isUniqueViolation(err) {
		return pkgerrors.NewDuplicateNameError(r.kind.Label(), entity.Name())
	}
	if err != nil {
		return pkgerrors.NewDatabaseError("create "+string(r.kind), err)
	}
	return nil
}

func (r *referenceRepository) Update(ctx context.Context, entity *entities.ReferenceEntity) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reference_entities SET name = ?, protein_per_100g = ? WHERE kind = ? AND id = ?`,
		entity.Name(), nullFloat(entity.ProteinPer100g()), string(r.kind), entity.ID().String())
	if isUniqueViolation(err) {
		return pkgerrors.NewDuplicateNameError(r.kind.Label(), entity.Name())
	}
	if err != nil {
		return pkgerrors.NewDatabaseError("update "+string(r.kind), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError(r.kind.Label())
	}
	return nil
}

func (r *referenceRepository) Delete(ctx context.Context, id valueobjects.ID) error {
	return deleteByID(ctx, r.db,
		`DELETE FROM reference_entities WHERE kind = ? AND id = ?`, r.kind.Label(),
		string(r.kind), id.String())
}

func (r *referenceRepository) DeleteAll(ctx context.Context) (int, error) {
	return deleteAll(ctx, r.db, `DELETE FROM reference_entities WHERE kind = ?`, string(r.kind), string(r.kind))
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *referenceRepository) scan(s scanner) (*entities.ReferenceEntity, error) {
	var (
		id, name string
		protein  sql.NullFloat64
	)
	if err := s.Scan(&id, &name, &protein); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, pkgerrors.NewDatabaseError("read "+string(r.kind), err)
	}
	var p *float64
	if protein.Valid {
		p = &protein.Float64
	}
	return entities.ReconstructReferenceEntity(r.kind, valueobjects.ID(id), name, p), nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
