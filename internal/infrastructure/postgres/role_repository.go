package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmc/certificados-api/internal/domain"
	"github.com/cmc/certificados-api/internal/domain/entity"
	"github.com/cmc/certificados-api/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

// RoleRepo implementación de RoleRepository sobre PostgreSQL.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

// Create persiste un rol y asigna el ID generado.
func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	err := r.q.QueryRow(ctx, `INSERT INTO rol (nombre) VALUES ($1) RETURNING id`, role.Name).Scan(&role.ID)
	if err != nil {
		return fmt.Errorf("insert rol: %w", err)
	}
	return nil
}

// GetByID obtiene un rol por ID.
func (r *RoleRepo) GetByID(ctx context.Context, id int64) (*entity.Role, error) {
	return r.scanOne(ctx, `SELECT id, nombre FROM rol WHERE id = $1`, id)
}

// GetByName obtiene el primer rol con ese nombre exacto.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return r.scanOne(ctx, `SELECT id, nombre FROM rol WHERE nombre = $1 ORDER BY id LIMIT 1`, name)
}

func (r *RoleRepo) scanOne(ctx context.Context, query string, arg any) (*entity.Role, error) {
	var role entity.Role
	if err := r.q.QueryRow(ctx, query, arg).Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rol: %w", err)
	}
	return &role, nil
}

// List lista todos los roles.
func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT id, nombre FROM rol ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Role
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan rol: %w", err)
		}
		list = append(list, &role)
	}
	return list, rows.Err()
}

// Update renombra un rol.
func (r *RoleRepo) Update(ctx context.Context, role *entity.Role) error {
	tag, err := r.q.Exec(ctx, `UPDATE rol SET nombre = $2 WHERE id = $1`, role.ID, role.Name)
	if err != nil {
		return fmt.Errorf("update rol: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
