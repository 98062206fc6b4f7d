package entity

import "time"

// Estados de uso frecuente; el estado es texto libre definido por quien emite.
const (
	CertificateStatusPending  = "Pendiente"
	CertificateStatusApproved = "Aprobado"
)

// Certificate certificado emitido para un servicio completado.
type Certificate struct {
	ID             int64
	Date           time.Time
	Status         string
	UserID         int64
	ServiceOrderID int64

	ServiceOrder *ServiceOrder
	Sheets       []TechnicalSheet // en orden de inserción
}

// TechnicalSheet ficha técnica: producto químico aplicado durante el servicio.
type TechnicalSheet struct {
	ID               int64
	CertificateID    int64
	ServiceDetailID  *int64
	AppliedProduct   string
	Dose             string
	ActiveIngredient string
	ToxicCategory    string
	ApplicationPlace string
	Presentation     string
}
