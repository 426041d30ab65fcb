package models

import (
	"time"

	"gorm.io/gorm"
)

// AssetCategories is the closed set of asset category labels. Categories are
// stored as plain text and validated in the service layer.
var AssetCategories = []string{
	"Komputer",
	"Monitor",
	"Printer",
	"Printer Thermal",
	"UPS",
	"Scanner",
	"Gadget",
	"Switch",
	"Face Recognition",
	"Finger Print",
	"Harddisk",
	"Camera Digital",
	"LCD Projector",
	"Mikrotik",
	"NFC Reader",
	"Power Bank",
	"Stavolt",
	"Wireless",
}

const (
	StatusActive      = "Active"
	StatusInactive    = "Inactive"
	StatusMaintenance = "Maintenance"
	StatusDisposed    = "Disposed"
)

var AssetStatuses = []string{
	StatusActive,
	StatusInactive,
	StatusMaintenance,
	StatusDisposed,
}

func ValidCategory(category string) bool {
	for _, c := range AssetCategories {
		if c == category {
			return true
		}
	}
	return false
}

func ValidStatus(status string) bool {
	for _, s := range AssetStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Location struct {
	ID          int64   `gorm:"primaryKey"`
	Name        string  `gorm:"size:255;not null"`
	Description *string `gorm:"type:text"`
	CreatedAt   time.Time
}

type Asset struct {
	ID             int64   `gorm:"primaryKey"`
	AssetNumber    string  `gorm:"size:100;uniqueIndex;not null"`
	SerialNumber   string  `gorm:"size:100;uniqueIndex;not null"`
	Name           string  `gorm:"size:255;not null"`
	Description    *string `gorm:"type:text"`
	Category       string  `gorm:"size:50;not null;index"`
	Brand          *string `gorm:"size:100"`
	Model          *string `gorm:"size:100"`
	PurchaseDate   *time.Time
	PurchasePrice  *string `gorm:"type:decimal(12,2)"`
	WarrantyExpiry *time.Time
	LocationID     int64   `gorm:"not null;index"`
	Status         string  `gorm:"size:20;not null;default:Active;index"`
	BarcodeData    *string `gorm:"type:text"`
	QRCodeData     *string `gorm:"column:qr_code_data;type:text"`
	Notes          *string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Location *Location `gorm:"foreignKey:LocationID"`
}

func Migrate(db *gorm.DB) error {
	db.AutoMigrate(&Location{})
	db.AutoMigrate(&Asset{})
	return nil
}
