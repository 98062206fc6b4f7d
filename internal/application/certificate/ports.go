package certificate

import (
	"context"

	"github.com/cmc/certificados-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de
// orden de servicio y certificado atados a ella. Si fn retorna error se hace rollback.
type TxRunner interface {
	RunCertificate(ctx context.Context, fn func(
		orderRepo repository.ServiceOrderRepository,
		certRepo repository.CertificateRepository,
	) error) error
}

// DocumentService genera y entrega los archivos de un certificado.
type DocumentService interface {
	// Render rellena la plantilla con fields y devuelve la ruta del DOCX.
	Render(ctx context.Context, certificateID int64, fields map[string]string) (string, error)
	// Convert devuelve la ruta del PDF, convirtiendo el DOCX solo si aún no existe.
	Convert(ctx context.Context, certificateID int64) (string, error)
	// Source devuelve la ruta del DOCX ya generado.
	Source(ctx context.Context, certificateID int64) (string, error)
}
