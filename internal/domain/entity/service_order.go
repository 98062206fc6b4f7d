package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType tipo de servicio de una orden. Las cuatro marcas son texto libre
// ("Si", "X", "") tal como llegan del formulario.
type ServiceType struct {
	ID              int64
	EmergencySupply string
	RodentControl   string
	TankWashing     string
	SafetyTraining  string
	Description     string
}

// ServiceDetail detalle facturable de una orden de servicio.
type ServiceDetail struct {
	ID              int64
	ServiceOrderID  int64
	Price           decimal.Decimal
	OperatorName    string
	ProductQuantity string
	ServiceEnd      string
}

// ServiceOrder orden de servicio: cuándo y qué se realizó.
type ServiceOrder struct {
	ID            int64
	Date          time.Time
	Time          string
	Precaution    string
	UserID        int64
	ServiceTypeID int64

	ServiceType *ServiceType
	Details     []ServiceDetail
}
