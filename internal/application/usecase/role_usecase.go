package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmc/certificados-api/internal/application/dto"
	"github.com/cmc/certificados-api/internal/domain"
	"github.com/cmc/certificados-api/internal/domain/entity"
	"github.com/cmc/certificados-api/internal/domain/repository"
)

// RoleUseCase alta, consulta y renombre de roles.
type RoleUseCase struct {
	repo repository.RoleRepository
}

// NewRoleUseCase construye el caso de uso.
func NewRoleUseCase(repo repository.RoleRepository) *RoleUseCase {
	return &RoleUseCase{repo: repo}
}

// List lista los roles.
func (uc *RoleUseCase) List(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.RoleResponse{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// Create crea un rol. El nombre no es único a nivel de base; aquí se rechaza el duplicado.
func (uc *RoleUseCase) Create(ctx context.Context, in dto.RoleRequest) (*dto.RoleResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre es obligatorio", domain.ErrInvalidInput)
	}
	existing, err := uc.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el rol %q ya existe", domain.ErrConflict, name)
	}
	role := &entity.Role{Name: name}
	if err := uc.repo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return &dto.RoleResponse{ID: role.ID, Name: role.Name}, nil
}

// Rename cambia el nombre de un rol existente.
func (uc *RoleUseCase) Rename(ctx context.Context, id int64, in dto.RoleRequest) (*dto.RoleResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre es obligatorio", domain.ErrInvalidInput)
	}
	role, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}
	role.Name = name
	if err := uc.repo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return &dto.RoleResponse{ID: role.ID, Name: role.Name}, nil
}

// FindByName busca un rol por nombre; (nil, nil) si no existe.
func (uc *RoleUseCase) FindByName(ctx context.Context, name string) (*entity.Role, error) {
	role, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return role, nil
}
