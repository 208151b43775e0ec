package models

import "time"

const EquipmentTable = "sel_equipment"

// Equipment status lifecycle. Only "available" items can be borrowed;
// "borrowed" is owned by the loan lifecycle, the rest are set by staff.
const (
	EquipmentAvailable = "available"
	EquipmentBorrowed  = "borrowed"
	EquipmentReserved  = "reserved"
	EquipmentRepair    = "repair"
	EquipmentLost      = "lost"
	EquipmentDamaged   = "damaged"
)

type Equipment struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	Code     string `gorm:"size:120;uniqueIndex;not null" json:"code"`
	Name     string `gorm:"size:200;not null" json:"name"`
	Category string `gorm:"size:80;index" json:"category"`
	Status   string `gorm:"size:20;not null;default:'available'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Equipment) TableName() string { return EquipmentTable }

func ValidEquipmentStatus(s string) bool {
	switch s {
	case EquipmentAvailable, EquipmentBorrowed, EquipmentReserved,
		EquipmentRepair, EquipmentLost, EquipmentDamaged:
		return true
	}
	return false
}
