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

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `u.id, u.nombre, u.direccion, u.telefono, u.contrasena_hash, u.rol_id, r.nombre`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario y asigna el ID generado.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO usuario (nombre, direccion, telefono, contrasena_hash, rol_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		user.Name, nullIfEmpty(user.Address), nullIfEmpty(user.Phone), user.PasswordHash, nullIfZero(user.RoleID),
	).Scan(&user.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: rol %d", domain.ErrReference, user.RoleID)
		}
		return fmt.Errorf("insert usuario: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID con el nombre de su rol.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM usuario u LEFT JOIN rol r ON r.id = u.rol_id
		WHERE u.id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByName obtiene el primer usuario con ese nombre (login).
func (r *UserRepo) GetByName(ctx context.Context, name string) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM usuario u LEFT JOIN rol r ON r.id = u.rol_id
		WHERE u.nombre = $1 ORDER BY u.id LIMIT 1`
	return r.scanOne(ctx, query, name)
}

func (r *UserRepo) scanOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get usuario: %w", err)
	}
	return u, nil
}

// List lista todos los usuarios.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM usuario u LEFT JOIN rol r ON r.id = u.rol_id
		ORDER BY u.id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list usuarios: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan usuario: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Update actualiza datos, rol y hash de contraseña.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE usuario SET nombre = $2, direccion = $3, telefono = $4, contrasena_hash = $5, rol_id = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		user.ID, user.Name, nullIfEmpty(user.Address), nullIfEmpty(user.Phone), user.PasswordHash, nullIfZero(user.RoleID),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: rol %d", domain.ErrReference, user.RoleID)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el usuario %q ya existe", domain.ErrConflict, user.Name)
		}
		return fmt.Errorf("update usuario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un usuario por ID.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM usuario WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el usuario tiene órdenes o certificados", domain.ErrConflict)
		}
		return fmt.Errorf("delete usuario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u              entity.User
		address, phone *string
		roleID         *int64
		roleName       *string
	)
	if err := row.Scan(&u.ID, &u.Name, &address, &phone, &u.PasswordHash, &roleID, &roleName); err != nil {
		return nil, err
	}
	u.Address = stringOrEmpty(address)
	u.Phone = stringOrEmpty(phone)
	u.RoleName = stringOrEmpty(roleName)
	if roleID != nil {
		u.RoleID = *roleID
	}
	return &u, nil
}
