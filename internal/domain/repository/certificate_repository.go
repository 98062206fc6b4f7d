package repository

import (
	"context"

	"github.com/cmc/certificados-api/internal/domain/entity"
)

// CertificateRepository persiste certificados y sus fichas técnicas.
type CertificateRepository interface {
	Create(ctx context.Context, cert *entity.Certificate) error
	CreateSheet(ctx context.Context, sheet *entity.TechnicalSheet) error
	// GetByID carga el certificado con sus fichas (orden de inserción); (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Certificate, error)
	// List devuelve certificados con fichas; limit <= 0 significa sin límite.
	List(ctx context.Context, limit, offset int) ([]*entity.Certificate, error)
	Update(ctx context.Context, cert *entity.Certificate) error
	DeleteSheets(ctx context.Context, certificateID int64) (int64, error)
	// Delete devuelve domain.ErrNotFound si el certificado no existe.
	Delete(ctx context.Context, id int64) error
}
