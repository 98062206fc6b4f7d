package certificate

import (
	"strconv"

	"github.com/cmc/certificados-api/internal/application/dto"
	"github.com/cmc/certificados-api/internal/domain/entity"
)

const (
	// notAvailable valor para campos sin dato.
	notAvailable = "N/A"
	// maxSheetSlots fichas que caben en la plantilla; las demás no se imprimen.
	maxSheetSlots = 3
)

// BuildFields arma el mapa de marcadores {{campo}} de la plantilla a partir
// del certificado confirmado y su usuario (cliente).
func BuildFields(cert *entity.Certificate, client *entity.User) map[string]string {
	fields := map[string]string{
		"certificado_id": strconv.FormatInt(cert.ID, 10),
		"fecha":          cert.Date.Format(dto.DateLayout),
		"estado":         orNA(cert.Status),
		// representante y nit no existen en el modelo de usuario.
		"representante": notAvailable,
		"nit":           notAvailable,
		"cliente":       notAvailable,
		"telefono":      notAvailable,
		"direccion":     notAvailable,
	}
	if client != nil {
		fields["cliente"] = orNA(client.Name)
		fields["telefono"] = orNA(client.Phone)
		fields["direccion"] = orNA(client.Address)
	}

	fields["descripcion_servicio"] = notAvailable
	fields["hora"] = notAvailable
	fields["precaucion"] = notAvailable
	fields["operario"] = notAvailable
	if order := cert.ServiceOrder; order != nil {
		fields["hora"] = orNA(order.Time)
		fields["precaucion"] = orNA(order.Precaution)
		if order.ServiceType != nil {
			fields["descripcion_servicio"] = orNA(order.ServiceType.Description)
		}
		if len(order.Details) > 0 {
			fields["operario"] = orNA(order.Details[0].OperatorName)
		}
	}

	for i, sheet := range cert.Sheets {
		if i == maxSheetSlots {
			break
		}
		n := strconv.Itoa(i + 1)
		fields["producto_"+n] = orNA(sheet.AppliedProduct)
		fields["ingrediente_"+n] = orNA(sheet.ActiveIngredient)
		fields["dosis_"+n] = orNA(sheet.Dose)
		fields["categoria_"+n] = orNA(sheet.ToxicCategory)
		fields["lugar_"+n] = orNA(sheet.ApplicationPlace)
		fields["presentacion_"+n] = orNA(sheet.Presentation)
	}
	return fields
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
