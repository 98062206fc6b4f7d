package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cmc/certificados-api/internal/application/certificate"
	"github.com/cmc/certificados-api/internal/domain/repository"
)

var _ certificate.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunCertificate inicia una transacción, ejecuta fn con los repos de orden y
// certificado atados a la tx y hace Commit; cualquier error hace Rollback.
func (r *TxRunner) RunCertificate(ctx context.Context, fn func(
	orderRepo repository.ServiceOrderRepository,
	certRepo repository.CertificateRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewServiceOrderRepository(tx), NewCertificateRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
