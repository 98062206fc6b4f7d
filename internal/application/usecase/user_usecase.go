package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmc/certificados-api/internal/application/auth"
	"github.com/cmc/certificados-api/internal/application/dto"
	"github.com/cmc/certificados-api/internal/domain"
	"github.com/cmc/certificados-api/internal/domain/entity"
	"github.com/cmc/certificados-api/internal/domain/repository"
)

// UserUseCase gestión de usuarios (administrador) y perfil propio.
type UserUseCase struct {
	repo     repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, roleRepo repository.RoleRepository) *UserUseCase {
	return &UserUseCase{repo: repo, roleRepo: roleRepo}
}

// List lista todos los usuarios.
func (uc *UserUseCase) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *entityToUserResponse(u))
	}
	return out, nil
}

// GetByID obtiene un usuario por ID; ErrNotFound si no existe.
func (uc *UserUseCase) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// Update edición parcial por un administrador. rol_id debe existir.
func (uc *UserUseCase) Update(ctx context.Context, id int64, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.RoleID != nil {
		role, err := uc.roleRepo.GetByID(ctx, *in.RoleID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		if role == nil {
			return nil, fmt.Errorf("%w: rol %d no existe", domain.ErrReference, *in.RoleID)
		}
		user.RoleID, user.RoleName = role.ID, role.Name
	}
	if err := uc.ensureNameFree(ctx, user, in.Name); err != nil {
		return nil, err
	}
	applyProfile(user, in.Name, in.Address, in.Phone)
	if err := uc.save(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// Delete elimina un usuario. ErrConflict si tiene órdenes o certificados.
func (uc *UserUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

// UpdateProfile cambia solo los campos enviados del usuario autenticado.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID int64, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureNameFree(ctx, user, in.Name); err != nil {
		return nil, err
	}
	applyProfile(user, in.Name, in.Address, in.Phone)
	if err := uc.save(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// ChangePassword reemplaza el hash de contraseña del usuario autenticado.
func (uc *UserUseCase) ChangePassword(ctx context.Context, userID int64, in dto.ChangePasswordRequest) error {
	if in.NewPassword == "" {
		return fmt.Errorf("%w: nueva_contrasena es obligatoria", domain.ErrInvalidInput)
	}
	user, err := uc.load(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return uc.save(ctx, user)
}

func (uc *UserUseCase) load(ctx context.Context, id int64) (*entity.User, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// ensureNameFree devuelve ErrConflict si otro usuario ya usa el nombre pedido.
// El login busca por nombre, así que debe ser único.
func (uc *UserUseCase) ensureNameFree(ctx context.Context, user *entity.User, name *string) error {
	if name == nil || *name == user.Name {
		return nil
	}
	other, err := uc.repo.GetByName(ctx, *name)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if other != nil && other.ID != user.ID {
		return fmt.Errorf("%w: el usuario %q ya existe", domain.ErrConflict, *name)
	}
	return nil
}

func (uc *UserUseCase) save(ctx context.Context, user *entity.User) error {
	if err := uc.repo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrReference) || errors.Is(err, domain.ErrConflict) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

func applyProfile(u *entity.User, name, address, phone *string) {
	if name != nil {
		u.Name = *name
	}
	if address != nil {
		u.Address = *address
	}
	if phone != nil {
		u.Phone = *phone
	}
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Address:  u.Address,
		Phone:    u.Phone,
		RoleID:   u.RoleID,
		RoleName: u.RoleName,
	}
}
