package repository

import (
	"context"

	"github.com/cmc/certificados-api/internal/domain/entity"
)

// RoleRepository define el puerto de persistencia para Role.
// Los Get devuelven (nil, nil) cuando el registro no existe.
type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	GetByID(ctx context.Context, id int64) (*entity.Role, error)
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)
	Update(ctx context.Context, role *entity.Role) error
}
