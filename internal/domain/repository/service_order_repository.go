package repository

import (
	"context"

	"github.com/cmc/certificados-api/internal/domain/entity"
)

// ServiceOrderRepository persiste el agregado orden de servicio.
// Cada Create asigna el ID generado en la entidad recibida.
type ServiceOrderRepository interface {
	CreateServiceType(ctx context.Context, st *entity.ServiceType) error
	Create(ctx context.Context, order *entity.ServiceOrder) error
	CreateDetail(ctx context.Context, detail *entity.ServiceDetail) error
	// GetByID carga la orden con su tipo y sus detalles; (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.ServiceOrder, error)
}
