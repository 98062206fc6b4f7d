package dto

// RegisterRequest entrada de registro. El rol se indica por rol_id o por nombre (rol);
// si faltan ambos el caso de uso responde ErrInvalidInput.
type RegisterRequest struct {
	Name     string `json:"nombre" validate:"required,max=45"`
	Address  string `json:"direccion" validate:"required,max=45"`
	Phone    string `json:"telefono" validate:"required,max=15"`
	Password string `json:"contrasena" validate:"required,max=72"`
	RoleID   int64  `json:"rol_id" validate:"omitempty,gt=0"`
	RoleName string `json:"rol" validate:"omitempty,max=45"`
}

// RegisterResponse salida de registro.
type RegisterResponse struct {
	Message string       `json:"mensaje"`
	User    UserResponse `json:"usuario"`
}

// LoginRequest credenciales de inicio de sesión.
type LoginRequest struct {
	Name     string `json:"nombre" validate:"required"`
	Password string `json:"contrasena" validate:"required"`
}

// LoginResponse token JWT y datos básicos del usuario.
type LoginResponse struct {
	Message string `json:"mensaje"`
	Token   string `json:"token"`
	Role    string `json:"rol"`
	Name    string `json:"nombre"`
	UserID  string `json:"usuario_id"`
}

// UserResponse salida de un usuario (sin contraseña ni hash).
type UserResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"nombre"`
	Address  string `json:"direccion"`
	Phone    string `json:"telefono"`
	RoleID   int64  `json:"rol_id"`
	RoleName string `json:"rol,omitempty"`
}

// UpdateUserRequest edición parcial por un administrador.
type UpdateUserRequest struct {
	Name    *string `json:"nombre" validate:"omitempty,min=1,max=45"`
	Address *string `json:"direccion" validate:"omitempty,max=45"`
	Phone   *string `json:"telefono" validate:"omitempty,max=15"`
	RoleID  *int64  `json:"rol_id" validate:"omitempty,gt=0"`
}

// UpdateProfileRequest edición parcial del perfil propio; solo cambian los campos enviados.
type UpdateProfileRequest struct {
	Name    *string `json:"nombre" validate:"omitempty,min=1,max=45"`
	Address *string `json:"direccion" validate:"omitempty,max=45"`
	Phone   *string `json:"telefono" validate:"omitempty,max=15"`
}

// ProfileResponse salida de PUT /perfil.
type ProfileResponse struct {
	Message string       `json:"mensaje"`
	User    UserResponse `json:"usuario"`
}

// ChangePasswordRequest cambio de contraseña del usuario autenticado.
type ChangePasswordRequest struct {
	NewPassword string `json:"nueva_contrasena" validate:"required,max=72"`
}

// RoleRequest alta o renombre de rol.
type RoleRequest struct {
	Name string `json:"nombre" validate:"required,max=45"`
}

// RoleResponse salida de un rol.
type RoleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}
