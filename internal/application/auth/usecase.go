package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/cmc/certificados-api/internal/application/dto"
	"github.com/cmc/certificados-api/internal/domain"
	"github.com/cmc/certificados-api/internal/domain/entity"
	"github.com/cmc/certificados-api/internal/domain/repository"
	"github.com/cmc/certificados-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// SuperuserConfig datos del superusuario que se crea al arrancar.
type SuperuserConfig struct {
	Name     string
	Password string
	Address  string
	Phone    string
	RoleName string
}

// AuthUseCase casos de uso de autenticación: registro, login y arranque.
type AuthUseCase struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, roleRepo repository.RoleRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, roleRepo: roleRepo, jwtCfg: jwtCfg}
}

// RegisterUser crea un usuario con el rol indicado por rol_id o por nombre.
// Rol ausente o inexistente: ErrInvalidInput. Nombre ya usado: ErrConflict.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	role, err := uc.resolveRole(ctx, in.RoleID, in.RoleName)
	if err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.GetByName(ctx, in.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el usuario %q ya existe", domain.ErrConflict, in.Name)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Name:         in.Name,
		Address:      in.Address,
		Phone:        in.Phone,
		PasswordHash: hash,
		RoleID:       role.ID,
		RoleName:     role.Name,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrReference) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return toUserResponse(user), nil
}

func (uc *AuthUseCase) resolveRole(ctx context.Context, id int64, name string) (*entity.Role, error) {
	var (
		role *entity.Role
		err  error
	)
	switch {
	case id > 0:
		role, err = uc.roleRepo.GetByID(ctx, id)
	case strings.TrimSpace(name) != "":
		role, err = uc.roleRepo.GetByName(ctx, strings.TrimSpace(name))
	default:
		return nil, fmt.Errorf("%w: rol_id o rol es obligatorio", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if role == nil {
		return nil, fmt.Errorf("%w: el rol no existe", domain.ErrInvalidInput)
	}
	return role, nil
}

// Authenticate devuelve el usuario si nombre y contraseña coinciden; nil en otro caso.
// Si el usuario no existe compara contra un hash fijo para que el costo sea el mismo.
func (uc *AuthUseCase) Authenticate(ctx context.Context, name, password string) (*entity.User, error) {
	user, err := uc.userRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	hash := dummyHash()
	if user != nil {
		hash = user.PasswordHash
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil || user == nil {
		return nil, nil
	}
	return user, nil
}

// Login verifica credenciales y genera el JWT. Credenciales inválidas: ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.Authenticate(ctx, in.Name, in.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := uc.IssueSessionToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Message: "Inicio de sesión exitoso",
		Token:   token,
		Role:    user.RoleName,
		Name:    user.Name,
		UserID:  strconv.FormatInt(user.ID, 10),
	}, nil
}

// IssueSessionToken firma un token con el id y el rol del usuario.
func (uc *AuthUseCase) IssueSessionToken(user *entity.User) (string, error) {
	return jwt.Generate(uc.jwtCfg.Secret, user.ID, user.RoleName, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
}

// EnsureSuperuser crea el rol administrador y el superusuario si no existen.
// Consulta y luego inserta: dos arranques simultáneos pueden duplicarlos.
func (uc *AuthUseCase) EnsureSuperuser(ctx context.Context, cfg SuperuserConfig) (created bool, err error) {
	role, err := uc.roleRepo.GetByName(ctx, cfg.RoleName)
	if err != nil {
		return false, fmt.Errorf("buscar rol %q: %w", cfg.RoleName, err)
	}
	if role == nil {
		role = &entity.Role{Name: cfg.RoleName}
		if err := uc.roleRepo.Create(ctx, role); err != nil {
			return false, fmt.Errorf("crear rol %q: %w", cfg.RoleName, err)
		}
	}
	user, err := uc.userRepo.GetByName(ctx, cfg.Name)
	if err != nil {
		return false, fmt.Errorf("buscar superusuario: %w", err)
	}
	if user != nil {
		return false, nil
	}
	hash, err := HashPassword(cfg.Password)
	if err != nil {
		return false, err
	}
	user = &entity.User{
		Name:         cfg.Name,
		Address:      cfg.Address,
		Phone:        cfg.Phone,
		PasswordHash: hash,
		RoleID:       role.ID,
		RoleName:     role.Name,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("crear superusuario: %w", err)
	}
	return true, nil
}

// HashPassword genera el hash bcrypt de la contraseña.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return string(hash), nil
}

var (
	dummyOnce sync.Once
	dummy     string
)

func dummyHash() string {
	dummyOnce.Do(func() {
		h, _ := bcrypt.GenerateFromPassword([]byte("contrasena-inexistente"), bcrypt.DefaultCost)
		dummy = string(h)
	})
	return dummy
}

func toUserResponse(u *entity.User) *dto.UserResponse {
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
