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
	"github.com/cmc/certificados-api/pkg/logger"
	"github.com/cmc/certificados-api/pkg/metrics"
)

// RenderError indica que la emisión quedó confirmada pero el documento no se generó.
// El certificado persistido viaja en Certificate.
type RenderError struct {
	Certificate dto.CertificateResponse
	Err         error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("certificado %d guardado, documento no generado: %v", e.Certificate.ID, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// IssueUseCase emite certificados: orden, tipo, detalle, certificado y fichas
// en una sola transacción, y luego genera el DOCX.
type IssueUseCase struct {
	txRunner TxRunner
	userRepo repository.UserRepository
	docs     DocumentService
	log      *logger.Logger
}

// NewIssueUseCase construye el caso de uso.
func NewIssueUseCase(txRunner TxRunner, userRepo repository.UserRepository, docs DocumentService, log *logger.Logger) *IssueUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &IssueUseCase{txRunner: txRunner, userRepo: userRepo, docs: docs, log: log.Component("emision")}
}

// Issue valida usuarios, inserta la cadena completa en una transacción y renderiza.
// Errores: ErrInvalidInput, ErrReference (sin escrituras), ErrPersistence (rollback)
// o *RenderError (certificado ya confirmado).
func (uc *IssueUseCase) Issue(ctx context.Context, in dto.CreateCertificateRequest) (*dto.CertificateResponse, error) {
	if in.ServiceOrder == nil || in.ServiceDetail == nil {
		return nil, fmt.Errorf("%w: orden_servicio y detalle_servicio son obligatorios", domain.ErrInvalidInput)
	}
	certDate, err := time.Parse(dto.DateLayout, in.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, in.Date)
	}
	orderDate, err := time.Parse(dto.DateLayout, in.ServiceOrder.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: orden_servicio.fecha %q", domain.ErrInvalidInput, in.ServiceOrder.Date)
	}

	client, err := uc.requireUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if in.ServiceOrder.UserID != in.UserID {
		if _, err := uc.requireUser(ctx, in.ServiceOrder.UserID); err != nil {
			return nil, err
		}
	}

	var cert *entity.Certificate
	err = uc.txRunner.RunCertificate(ctx, func(orderRepo repository.ServiceOrderRepository, certRepo repository.CertificateRepository) error {
		// 1. Tipo de servicio
		st := &entity.ServiceType{
			EmergencySupply: in.ServiceOrder.ServiceType.EmergencySupply,
			RodentControl:   in.ServiceOrder.ServiceType.RodentControl,
			TankWashing:     in.ServiceOrder.ServiceType.TankWashing,
			SafetyTraining:  in.ServiceOrder.ServiceType.SafetyTraining,
			Description:     in.ServiceOrder.ServiceType.Description,
		}
		if err := orderRepo.CreateServiceType(ctx, st); err != nil {
			return fmt.Errorf("tipo_servicio: %w", err)
		}

		// 2. Orden de servicio
		order := &entity.ServiceOrder{
			Date:          orderDate,
			Time:          in.ServiceOrder.Time,
			Precaution:    in.ServiceOrder.Precaution,
			UserID:        in.ServiceOrder.UserID,
			ServiceTypeID: st.ID,
			ServiceType:   st,
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("orden_servicio: %w", err)
		}

		// 3. Detalle de servicio
		detail := entity.ServiceDetail{
			ServiceOrderID:  order.ID,
			Price:           in.ServiceDetail.Price,
			OperatorName:    in.ServiceDetail.OperatorName,
			ProductQuantity: in.ServiceDetail.ProductQuantity,
			ServiceEnd:      in.ServiceDetail.ServiceEnd,
		}
		if err := orderRepo.CreateDetail(ctx, &detail); err != nil {
			return fmt.Errorf("detalle_servicio: %w", err)
		}
		order.Details = []entity.ServiceDetail{detail}

		// 4. Certificado
		cert = &entity.Certificate{
			Date:           certDate,
			Status:         in.Status,
			UserID:         in.UserID,
			ServiceOrderID: order.ID,
			ServiceOrder:   order,
		}
		if err := certRepo.Create(ctx, cert); err != nil {
			return fmt.Errorf("certificado: %w", err)
		}

		// 5. Fichas técnicas, en el orden recibido
		detailID := detail.ID
		for i, s := range in.Sheets {
			sheet := entity.TechnicalSheet{
				CertificateID:    cert.ID,
				ServiceDetailID:  &detailID,
				AppliedProduct:   s.AppliedProduct,
				Dose:             s.Dose,
				ActiveIngredient: s.ActiveIngredient,
				ToxicCategory:    s.ToxicCategory,
				ApplicationPlace: s.ApplicationPlace,
				Presentation:     s.Presentation,
			}
			if err := certRepo.CreateSheet(ctx, &sheet); err != nil {
				return fmt.Errorf("ficha_tecnica %d: %w", i+1, err)
			}
			cert.Sheets = append(cert.Sheets, sheet)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrReference) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	metrics.CertificatesIssuedTotal.Inc()

	resp := ToResponse(cert)
	if _, err := uc.docs.Render(ctx, cert.ID, BuildFields(cert, client)); err != nil {
		metrics.DocumentFailuresTotal.WithLabelValues("render").Inc()
		uc.log.Error().Err(err).Int64("certificado_id", cert.ID).Msg("no se pudo generar el documento")
		return &resp, &RenderError{Certificate: resp, Err: err}
	}
	uc.log.Info().Int64("certificado_id", cert.ID).Int("fichas", len(cert.Sheets)).Msg("certificado emitido")
	return &resp, nil
}

func (uc *IssueUseCase) requireUser(ctx context.Context, id int64) (*entity.User, error) {
	u, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: usuario %d no existe", domain.ErrReference, id)
	}
	return u, nil
}
