package repository

import (
	"context"

	"github.com/cmc/certificados-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get devuelven (nil, nil) cuando el usuario no existe; RoleName viene cargado.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// Delete devuelve domain.ErrNotFound si no existe y domain.ErrConflict si
	// otros registros lo referencian.
	Delete(ctx context.Context, id int64) error
}
