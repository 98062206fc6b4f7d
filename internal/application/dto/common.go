package dto

// DateLayout formato de fechas en requests y responses (fecha de orden y certificado).
const DateLayout = "2006-01-02"

// PageRequest paginación opcional para listados; Limit 0 = sin límite.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse respuesta con solo un mensaje.
type MessageResponse struct {
	Message string `json:"mensaje"`
}
