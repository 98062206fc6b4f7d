package certificate

import (
	"github.com/cmc/certificados-api/internal/application/dto"
	"github.com/cmc/certificados-api/internal/domain/entity"
)

// ToResponse convierte el certificado (con orden y fichas si están cargadas) a DTO.
func ToResponse(c *entity.Certificate) dto.CertificateResponse {
	out := dto.CertificateResponse{
		ID:             c.ID,
		Date:           c.Date.Format(dto.DateLayout),
		Status:         c.Status,
		UserID:         c.UserID,
		ServiceOrderID: c.ServiceOrderID,
		Sheets:         make([]dto.TechnicalSheetResponse, 0, len(c.Sheets)),
	}
	if c.ServiceOrder != nil {
		order := toOrderResponse(c.ServiceOrder)
		out.ServiceOrder = &order
	}
	for _, s := range c.Sheets {
		out.Sheets = append(out.Sheets, dto.TechnicalSheetResponse{
			ID:               s.ID,
			CertificateID:    s.CertificateID,
			ServiceDetailID:  s.ServiceDetailID,
			AppliedProduct:   s.AppliedProduct,
			Dose:             s.Dose,
			ActiveIngredient: s.ActiveIngredient,
			ToxicCategory:    s.ToxicCategory,
			ApplicationPlace: s.ApplicationPlace,
			Presentation:     s.Presentation,
		})
	}
	return out
}

func toOrderResponse(o *entity.ServiceOrder) dto.ServiceOrderResponse {
	out := dto.ServiceOrderResponse{
		ID:            o.ID,
		Date:          o.Date.Format(dto.DateLayout),
		Time:          o.Time,
		Precaution:    o.Precaution,
		UserID:        o.UserID,
		ServiceTypeID: o.ServiceTypeID,
		Details:       make([]dto.ServiceDetailResponse, 0, len(o.Details)),
	}
	if st := o.ServiceType; st != nil {
		out.ServiceType = &dto.ServiceTypeResponse{
			ID:              st.ID,
			EmergencySupply: st.EmergencySupply,
			RodentControl:   st.RodentControl,
			TankWashing:     st.TankWashing,
			SafetyTraining:  st.SafetyTraining,
			Description:     st.Description,
		}
	}
	for _, d := range o.Details {
		out.Details = append(out.Details, dto.ServiceDetailResponse{
			ID:              d.ID,
			ServiceOrderID:  d.ServiceOrderID,
			Price:           d.Price,
			OperatorName:    d.OperatorName,
			ProductQuantity: d.ProductQuantity,
			ServiceEnd:      d.ServiceEnd,
		})
	}
	return out
}
