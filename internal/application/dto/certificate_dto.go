package dto

import "github.com/shopspring/decimal"

// CreateCertificateRequest payload anidado de emisión: certificado, orden, tipo,
// detalle y fichas técnicas.
type CreateCertificateRequest struct {
	UserID        int64                   `json:"usuario_id" validate:"required,gt=0"`
	Date          string                  `json:"fecha" validate:"required,datetime=2006-01-02"`
	Status        string                  `json:"estado" validate:"required,max=45"`
	ServiceOrder  *ServiceOrderRequest    `json:"orden_servicio" validate:"required"`
	ServiceDetail *ServiceDetailRequest   `json:"detalle_servicio" validate:"required"`
	Sheets        []TechnicalSheetRequest `json:"fichas_tecnicas" validate:"dive"`
}

// ServiceOrderRequest orden de servicio dentro de la emisión.
type ServiceOrderRequest struct {
	UserID      int64              `json:"usuario_id" validate:"required,gt=0"`
	Date        string             `json:"fecha" validate:"required,datetime=2006-01-02"`
	Time        string             `json:"hora" validate:"max=45"`
	Precaution  string             `json:"precaucion" validate:"max=255"`
	ServiceType ServiceTypeRequest `json:"tipo_servicio"`
}

// ServiceTypeRequest marcas de tipo de servicio ("Si", "X", ...) y descripción.
type ServiceTypeRequest struct {
	EmergencySupply string `json:"suministro_emergencia" validate:"max=45"`
	RodentControl   string `json:"control_roedores" validate:"max=45"`
	TankWashing     string `json:"lavado_tanques" validate:"max=45"`
	SafetyTraining  string `json:"capacitacion_sst" validate:"max=45"`
	Description     string `json:"descripcion" validate:"max=45"`
}

// ServiceDetailRequest detalle facturable del servicio.
type ServiceDetailRequest struct {
	Price           decimal.Decimal `json:"precio"`
	OperatorName    string          `json:"nombre_operario" validate:"max=100"`
	ProductQuantity string          `json:"cantidad_producto" validate:"max=100"`
	ServiceEnd      string          `json:"fin_servicio" validate:"max=50"`
}

// TechnicalSheetRequest ficha técnica de un producto aplicado.
type TechnicalSheetRequest struct {
	AppliedProduct   string `json:"producto_aplicado" validate:"required,max=45"`
	Dose             string `json:"dosis" validate:"max=45"`
	ActiveIngredient string `json:"ingrediente_activo" validate:"max=45"`
	ToxicCategory    string `json:"categoria_toxica" validate:"max=45"`
	ApplicationPlace string `json:"lugar_aplicado" validate:"max=100"`
	Presentation     string `json:"presentacion" validate:"max=45"`
}

// UpdateCertificateRequest actualización parcial; solo cambian los campos enviados.
type UpdateCertificateRequest struct {
	Status *string `json:"estado" validate:"omitempty,max=45"`
	Date   *string `json:"fecha" validate:"omitempty,datetime=2006-01-02"`
	UserID *int64  `json:"usuario_id" validate:"omitempty,gt=0"`
}

// CertificateResponse certificado con su orden, tipo, detalles y fichas.
type CertificateResponse struct {
	ID             int64                    `json:"id"`
	Date           string                   `json:"fecha"`
	Status         string                   `json:"estado"`
	UserID         int64                    `json:"usuario_id"`
	ServiceOrderID int64                    `json:"orden_servicio_id"`
	ServiceOrder   *ServiceOrderResponse    `json:"orden_servicio,omitempty"`
	Sheets         []TechnicalSheetResponse `json:"fichas_tecnicas"`
}

// ServiceOrderResponse orden de servicio anidada.
type ServiceOrderResponse struct {
	ID            int64                   `json:"id"`
	Date          string                  `json:"fecha"`
	Time          string                  `json:"hora"`
	Precaution    string                  `json:"precaucion"`
	UserID        int64                   `json:"usuario_id"`
	ServiceTypeID int64                   `json:"tipo_servicio_id"`
	ServiceType   *ServiceTypeResponse    `json:"tipo_servicio,omitempty"`
	Details       []ServiceDetailResponse `json:"detalles_servicio"`
}

// ServiceTypeResponse tipo de servicio anidado.
type ServiceTypeResponse struct {
	ID              int64  `json:"id"`
	EmergencySupply string `json:"suministro_emergencia"`
	RodentControl   string `json:"control_roedores"`
	TankWashing     string `json:"lavado_tanques"`
	SafetyTraining  string `json:"capacitacion_sst"`
	Description     string `json:"descripcion"`
}

// ServiceDetailResponse detalle de servicio anidado.
type ServiceDetailResponse struct {
	ID              int64           `json:"id"`
	ServiceOrderID  int64           `json:"orden_servicio_id"`
	Price           decimal.Decimal `json:"precio"`
	OperatorName    string          `json:"nombre_operario"`
	ProductQuantity string          `json:"cantidad_producto"`
	ServiceEnd      string          `json:"fin_servicio"`
}

// TechnicalSheetResponse ficha técnica anidada.
type TechnicalSheetResponse struct {
	ID               int64  `json:"id"`
	CertificateID    int64  `json:"certificado_id"`
	ServiceDetailID  *int64 `json:"detalle_servicio_id"`
	AppliedProduct   string `json:"producto_aplicado"`
	Dose             string `json:"dosis"`
	ActiveIngredient string `json:"ingrediente_activo"`
	ToxicCategory    string `json:"categoria_toxica"`
	ApplicationPlace string `json:"lugar_aplicado"`
	Presentation     string `json:"presentacion"`
}

// DocumentFailureResponse emisión confirmada cuyo documento no pudo generarse.
type DocumentFailureResponse struct {
	Code        string              `json:"code"`
	Message     string              `json:"message"`
	Certificate CertificateResponse `json:"certificado"`
}
