package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cmc/certificados-api/internal/domain"
	"github.com/cmc/certificados-api/internal/domain/entity"
	"github.com/cmc/certificados-api/internal/domain/repository"
)

var _ repository.ServiceOrderRepository = (*ServiceOrderRepo)(nil)

// ServiceOrderRepo persiste tipo_servicio, orden_servicio y detalle_servicio (usable con pool o tx).
type ServiceOrderRepo struct {
	q Querier
}

// NewServiceOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceOrderRepository(q Querier) *ServiceOrderRepo {
	return &ServiceOrderRepo{q: q}
}

// CreateServiceType inserta el tipo de servicio; su ID alimenta la orden.
func (r *ServiceOrderRepo) CreateServiceType(ctx context.Context, st *entity.ServiceType) error {
	query := `
		INSERT INTO tipo_servicio (suministro_emergencia, control_roedores, lavado_tanques, capacitacion_sst, descripcion)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		nullIfEmpty(st.EmergencySupply), nullIfEmpty(st.RodentControl), nullIfEmpty(st.TankWashing),
		nullIfEmpty(st.SafetyTraining), nullIfEmpty(st.Description),
	).Scan(&st.ID)
	if err != nil {
		return fmt.Errorf("insert tipo_servicio: %w", err)
	}
	return nil
}

// Create inserta la orden; requiere ServiceTypeID ya asignado.
func (r *ServiceOrderRepo) Create(ctx context.Context, order *entity.ServiceOrder) error {
	query := `
		INSERT INTO orden_servicio (fecha, hora, precaucion, usuario_id, tipo_servicio_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		order.Date, nullIfEmpty(order.Time), nullIfEmpty(order.Precaution), nullIfZero(order.UserID), order.ServiceTypeID,
	).Scan(&order.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: orden_servicio", domain.ErrReference)
		}
		return fmt.Errorf("insert orden_servicio: %w", err)
	}
	return nil
}

// CreateDetail inserta un detalle; requiere ServiceOrderID ya asignado.
func (r *ServiceOrderRepo) CreateDetail(ctx context.Context, detail *entity.ServiceDetail) error {
	query := `
		INSERT INTO detalle_servicio (precio, nombre_operario, cantidad_producto, fin_servicio, orden_servicio_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		detail.Price, nullIfEmpty(detail.OperatorName), nullIfEmpty(detail.ProductQuantity),
		nullIfEmpty(detail.ServiceEnd), detail.ServiceOrderID,
	).Scan(&detail.ID)
	if err != nil {
		return fmt.Errorf("insert detalle_servicio: %w", err)
	}
	return nil
}

// GetByID carga la orden con su tipo de servicio y detalles.
func (r *ServiceOrderRepo) GetByID(ctx context.Context, id int64) (*entity.ServiceOrder, error) {
	query := `
		SELECT o.id, o.fecha, o.hora, o.precaucion, o.usuario_id, o.tipo_servicio_id,
		       t.suministro_emergencia, t.control_roedores, t.lavado_tanques, t.capacitacion_sst, t.descripcion
		FROM orden_servicio o
		JOIN tipo_servicio t ON t.id = o.tipo_servicio_id
		WHERE o.id = $1`
	var (
		o                                 entity.ServiceOrder
		st                                entity.ServiceType
		date                              *time.Time
		hora, precaution                  *string
		userID                            *int64
		emergency, rodent, tank, training *string
		description                       *string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &date, &hora, &precaution, &userID, &o.ServiceTypeID,
		&emergency, &rodent, &tank, &training, &description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get orden_servicio: %w", err)
	}
	if date != nil {
		o.Date = *date
	}
	if userID != nil {
		o.UserID = *userID
	}
	o.Time = stringOrEmpty(hora)
	o.Precaution = stringOrEmpty(precaution)
	st.ID = o.ServiceTypeID
	st.EmergencySupply = stringOrEmpty(emergency)
	st.RodentControl = stringOrEmpty(rodent)
	st.TankWashing = stringOrEmpty(tank)
	st.SafetyTraining = stringOrEmpty(training)
	st.Description = stringOrEmpty(description)
	o.ServiceType = &st

	details, err := r.details(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Details = details
	return &o, nil
}

func (r *ServiceOrderRepo) details(ctx context.Context, orderID int64) ([]entity.ServiceDetail, error) {
	query := `
		SELECT id, precio, nombre_operario, cantidad_producto, fin_servicio, orden_servicio_id
		FROM detalle_servicio WHERE orden_servicio_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list detalle_servicio: %w", err)
	}
	defer rows.Close()
	var list []entity.ServiceDetail
	for rows.Next() {
		var (
			d                           entity.ServiceDetail
			price                       decimal.NullDecimal
			operator, quantity, endNote *string
		)
		if err := rows.Scan(&d.ID, &price, &operator, &quantity, &endNote, &d.ServiceOrderID); err != nil {
			return nil, fmt.Errorf("scan detalle_servicio: %w", err)
		}
		if price.Valid {
			d.Price = price.Decimal
		}
		d.OperatorName = stringOrEmpty(operator)
		d.ProductQuantity = stringOrEmpty(quantity)
		d.ServiceEnd = stringOrEmpty(endNote)
		list = append(list, d)
	}
	return list, rows.Err()
}
