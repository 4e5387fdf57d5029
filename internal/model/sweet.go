package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Column limits of the sweets table: quantity is INTEGER, price is DECIMAL(10,2).
const (
	MaxQuantity   = math.MaxInt32
	PriceDecimals = 2
)

// MaxPrice is the largest value DECIMAL(10,2) holds.
var MaxPrice = decimal.RequireFromString("99999999.99")

// Sweet is a purchasable inventory item.
// Quantity and Price are never negative; the CHECK constraints mirror the service guards.
type Sweet struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"index;not null"`
	Category    string          `gorm:"index;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;check:price >= 0"`
	Quantity    int             `gorm:"not null;default:0;check:quantity >= 0"`
	Description *string
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeforeCreate assigns the identifier client-side so the same model works on
// Postgres and on the SQLite test database.
func (s *Sweet) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
