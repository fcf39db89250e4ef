package models

import "time"

// EquipmentStatus is the lifecycle state of a hardware unit.
type EquipmentStatus string

const (
	// EquipmentStatusInService is a unit deployed at the client.
	EquipmentStatusInService EquipmentStatus = "in_service"
	// EquipmentStatusInStock is a unit kept in stock.
	EquipmentStatusInStock EquipmentStatus = "in_stock"
	// EquipmentStatusRetired is a unit taken out of service.
	EquipmentStatusRetired EquipmentStatus = "retired"
)

// Equipment represents a hardware unit owned by a client.
type Equipment struct {
	// ID is the unique identifier for the unit.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// ClientID is the owning client.
	ClientID uint64 `gorm:"not null;index" json:"client_id"`
	// Client is the owning client (loaded via foreign key).
	Client Client `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	// Name is the model or label of the unit.
	Name string `gorm:"size:255;not null" json:"name"`
	// SerialNumber is the manufacturer serial number.
	SerialNumber string `gorm:"size:100" json:"serial_number"`
	// EstimatedObsolescenceDate is the date after which the unit is considered obsolete.
	EstimatedObsolescenceDate *time.Time `gorm:"index" json:"estimated_obsolescence_date"`
	// EndOfSale is the date the manufacturer stops selling the model.
	EndOfSale *time.Time `gorm:"index" json:"end_of_sale"`
	// Status is the lifecycle state of the unit.
	Status EquipmentStatus `gorm:"type:varchar(20);not null;default:'in_service'" json:"status"`
	// CreatedAt is the timestamp when the unit was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the unit was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Equipment model.
func (Equipment) TableName() string {
	return "equipment"
}
