package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Las capas superiores envuelven con %w y comparan con errors.Is.
var (
	ErrInvalidInput = errors.New("entrada inválida")
	ErrReference    = errors.New("referencia a un registro inexistente")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrPersistence  = errors.New("error al guardar en base de datos")
	ErrConversion   = errors.New("error al convertir el documento")
)
