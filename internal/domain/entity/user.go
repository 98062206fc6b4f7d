package entity

// User usuario del sistema; pertenece a un Role.
type User struct {
	ID           int64
	Name         string
	Address      string
	Phone        string
	PasswordHash string // bcrypt, nunca la contraseña en claro
	RoleID       int64
	RoleName     string // cargado por JOIN, no persistido en usuario
}
