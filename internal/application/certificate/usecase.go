package certificate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmc/certificados-api/internal/application/dto"
	"github.com/cmc/certificados-api/internal/domain"
	"github.com/cmc/certificados-api/internal/domain/entity"
	"github.com/cmc/certificados-api/internal/domain/repository"
	"github.com/cmc/certificados-api/pkg/metrics"
)

// DefaultListLimit y MaxListLimit acotan GET /certificados cuando no llega limit.
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// FormatPDF y FormatDOCX formatos de descarga.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// UseCase consultas, edición, borrado y descarga de certificados ya emitidos.
type UseCase struct {
	txRunner  TxRunner
	certRepo  repository.CertificateRepository
	orderRepo repository.ServiceOrderRepository
	userRepo  repository.UserRepository
	docs      DocumentService
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	certRepo repository.CertificateRepository,
	orderRepo repository.ServiceOrderRepository,
	userRepo repository.UserRepository,
	docs DocumentService,
) *UseCase {
	return &UseCase{txRunner: txRunner, certRepo: certRepo, orderRepo: orderRepo, userRepo: userRepo, docs: docs}
}

// Get devuelve el certificado con su orden, tipo, detalles y fichas.
func (uc *UseCase) Get(ctx context.Context, id int64) (*dto.CertificateResponse, error) {
	cert, err := uc.certRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if cert == nil {
		return nil, domain.ErrNotFound
	}
	return uc.withOrder(ctx, cert)
}

// withOrder carga la orden anidada para que GET y PUT respondan igual.
func (uc *UseCase) withOrder(ctx context.Context, cert *entity.Certificate) (*dto.CertificateResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, cert.ServiceOrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	cert.ServiceOrder = order
	out := ToResponse(cert)
	return &out, nil
}

// List devuelve certificados (más recientes primero) con sus fichas.
func (uc *UseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.CertificateResponse, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	list, err := uc.certRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	out := make([]dto.CertificateResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToResponse(c))
	}
	return out, nil
}

// Update aplica solo los campos enviados. Un usuario_id nuevo debe existir
// antes de tocar el registro.
func (uc *UseCase) Update(ctx context.Context, id int64, in dto.UpdateCertificateRequest) (*dto.CertificateResponse, error) {
	cert, err := uc.certRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if cert == nil {
		return nil, domain.ErrNotFound
	}
	if in.UserID != nil {
		u, err := uc.userRepo.GetByID(ctx, *in.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		if u == nil {
			return nil, fmt.Errorf("%w: usuario %d no existe", domain.ErrReference, *in.UserID)
		}
		cert.UserID = *in.UserID
	}
	if in.Date != nil {
		d, err := time.Parse(dto.DateLayout, *in.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, *in.Date)
		}
		cert.Date = d
	}
	if in.Status != nil {
		cert.Status = *in.Status
	}
	if err := uc.certRepo.Update(ctx, cert); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return uc.withOrder(ctx, cert)
}

// Delete borra las fichas y luego el certificado en una transacción.
// Un id inexistente (o ya borrado) devuelve ErrNotFound.
func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	return uc.txRunner.RunCertificate(ctx, func(_ repository.ServiceOrderRepository, certRepo repository.CertificateRepository) error {
		if _, err := certRepo.DeleteSheets(ctx, id); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		if err := certRepo.Delete(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
				return err
			}
			return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		return nil
	})
}

// File devuelve la ruta del archivo a descargar: el PDF (convertido una sola vez)
// o el DOCX original si format es "docx". Un certificado borrado no se
// descarga aunque sus archivos sigan en disco.
func (uc *UseCase) File(ctx context.Context, id int64, format string) (string, error) {
	if format != "" && format != FormatPDF && format != FormatDOCX {
		return "", fmt.Errorf("%w: formato %q no soportado", domain.ErrInvalidInput, format)
	}
	cert, err := uc.certRepo.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if cert == nil {
		return "", domain.ErrNotFound
	}
	switch format {
	case "", FormatPDF:
		path, err := uc.docs.Convert(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrConversion) {
				metrics.DocumentFailuresTotal.WithLabelValues("convert").Inc()
			}
			return "", err
		}
		return path, nil
	case FormatDOCX:
		return uc.docs.Source(ctx, id)
	default:
		return "", fmt.Errorf("%w: formato %q no soportado", domain.ErrInvalidInput, format)
	}
}
