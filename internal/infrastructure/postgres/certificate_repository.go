package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmc/certificados-api/internal/domain"
	"github.com/cmc/certificados-api/internal/domain/entity"
	"github.com/cmc/certificados-api/internal/domain/repository"
)

var _ repository.CertificateRepository = (*CertificateRepo)(nil)

// CertificateRepo persiste certificado y ficha_tecnica (usable con pool o tx).
type CertificateRepo struct {
	q Querier
}

// NewCertificateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCertificateRepository(q Querier) *CertificateRepo {
	return &CertificateRepo{q: q}
}

// Create inserta el certificado; requiere ServiceOrderID ya asignado.
func (r *CertificateRepo) Create(ctx context.Context, cert *entity.Certificate) error {
	query := `
		INSERT INTO certificado (fecha, estado, usuario_id, orden_servicio_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, cert.Date, nullIfEmpty(cert.Status), cert.UserID, cert.ServiceOrderID).Scan(&cert.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: certificado", domain.ErrReference)
		}
		return fmt.Errorf("insert certificado: %w", err)
	}
	return nil
}

// CreateSheet inserta una ficha técnica del certificado.
func (r *CertificateRepo) CreateSheet(ctx context.Context, sheet *entity.TechnicalSheet) error {
	query := `
		INSERT INTO ficha_tecnica (producto_aplicado, dosis, ingrediente_activo, categoria_toxica,
		                           lugar_aplicado, presentacion, certificado_id, detalle_servicio_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		sheet.AppliedProduct, nullIfEmpty(sheet.Dose), nullIfEmpty(sheet.ActiveIngredient),
		nullIfEmpty(sheet.ToxicCategory), nullIfEmpty(sheet.ApplicationPlace), nullIfEmpty(sheet.Presentation),
		sheet.CertificateID, sheet.ServiceDetailID,
	).Scan(&sheet.ID)
	if err != nil {
		return fmt.Errorf("insert ficha_tecnica: %w", err)
	}
	return nil
}

// GetByID obtiene el certificado con sus fichas.
func (r *CertificateRepo) GetByID(ctx context.Context, id int64) (*entity.Certificate, error) {
	query := `SELECT id, fecha, estado, usuario_id, orden_servicio_id FROM certificado WHERE id = $1`
	cert, err := scanCertificate(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get certificado: %w", err)
	}
	sheets, err := r.sheets(ctx, []int64{cert.ID})
	if err != nil {
		return nil, err
	}
	cert.Sheets = sheets[cert.ID]
	return cert, nil
}

// List lista certificados (más recientes primero) con sus fichas.
func (r *CertificateRepo) List(ctx context.Context, limit, offset int) ([]*entity.Certificate, error) {
	query := `SELECT id, fecha, estado, usuario_id, orden_servicio_id FROM certificado ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list certificados: %w", err)
	}
	var (
		list []*entity.Certificate
		ids  []int64
	)
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan certificado: %w", err)
		}
		list = append(list, cert)
		ids = append(ids, cert.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list certificados: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}
	sheets, err := r.sheets(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, cert := range list {
		cert.Sheets = sheets[cert.ID]
	}
	return list, nil
}

// Update actualiza fecha, estado y usuario del certificado.
func (r *CertificateRepo) Update(ctx context.Context, cert *entity.Certificate) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE certificado SET fecha = $2, estado = $3, usuario_id = $4 WHERE id = $1`,
		cert.ID, cert.Date, nullIfEmpty(cert.Status), cert.UserID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: usuario %d", domain.ErrReference, cert.UserID)
		}
		return fmt.Errorf("update certificado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteSheets borra las fichas del certificado y devuelve cuántas eran.
func (r *CertificateRepo) DeleteSheets(ctx context.Context, certificateID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM ficha_tecnica WHERE certificado_id = $1`, certificateID)
	if err != nil {
		return 0, fmt.Errorf("delete fichas: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete borra el certificado; las fichas deben borrarse antes.
func (r *CertificateRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM certificado WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el certificado aún tiene fichas", domain.ErrConflict)
		}
		return fmt.Errorf("delete certificado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CertificateRepo) sheets(ctx context.Context, certIDs []int64) (map[int64][]entity.TechnicalSheet, error) {
	query := `
		SELECT id, certificado_id, detalle_servicio_id, producto_aplicado, dosis, ingrediente_activo,
		       categoria_toxica, lugar_aplicado, presentacion
		FROM ficha_tecnica WHERE certificado_id = ANY($1) ORDER BY id`
	rows, err := r.q.Query(ctx, query, certIDs)
	if err != nil {
		return nil, fmt.Errorf("list fichas: %w", err)
	}
	defer rows.Close()
	out := make(map[int64][]entity.TechnicalSheet, len(certIDs))
	for rows.Next() {
		var (
			s                                      entity.TechnicalSheet
			dose, ingredient, category, place, pre *string
		)
		if err := rows.Scan(&s.ID, &s.CertificateID, &s.ServiceDetailID, &s.AppliedProduct,
			&dose, &ingredient, &category, &place, &pre); err != nil {
			return nil, fmt.Errorf("scan ficha: %w", err)
		}
		s.Dose = stringOrEmpty(dose)
		s.ActiveIngredient = stringOrEmpty(ingredient)
		s.ToxicCategory = stringOrEmpty(category)
		s.ApplicationPlace = stringOrEmpty(place)
		s.Presentation = stringOrEmpty(pre)
		out[s.CertificateID] = append(out[s.CertificateID], s)
	}
	return out, rows.Err()
}

func scanCertificate(row pgx.Row) (*entity.Certificate, error) {
	var (
		c      entity.Certificate
		date   *time.Time
		status *string
	)
	if err := row.Scan(&c.ID, &date, &status, &c.UserID, &c.ServiceOrderID); err != nil {
		return nil, err
	}
	if date != nil {
		c.Date = *date
	}
	c.Status = stringOrEmpty(status)
	return &c, nil
}
