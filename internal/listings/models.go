package listings

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Street    string `gorm:"not null;uniqueIndex:idx_address_unique" json:"street"`
	City      string `gorm:"not null;index;uniqueIndex:idx_address_unique" json:"city"`
	StateCode string `gorm:"size:2;not null;uniqueIndex:idx_address_unique" json:"stateCode"`
	ZipCode   string `gorm:"size:10;not null;uniqueIndex:idx_address_unique" json:"zipCode"`
}

// Property is one rentable unit. CanRent true means the unit is available.
type Property struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	AddrID     uint       `gorm:"not null;index" json:"addrId"`
	Address    Address    `gorm:"foreignKey:AddrID" json:"-"`
	LandlordID *uint      `gorm:"index" json:"landlordId"`
	UnitLabel  string     `json:"unitLabel"`
	RentCost   *int       `json:"rentCost"`
	Sqft       *int       `json:"sqft"`
	Bedrooms   *int       `json:"bedrooms"`
	Bathrooms  *float64   `gorm:"type:numeric(3,1)" json:"bathrooms"`
	CanRent    bool       `gorm:"not null" json:"canRent"`
	SourceKey  *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"-"`
	CreatedAt  time.Time  `json:"-"`
	UpdatedAt  time.Time  `json:"-"`
}

// Review is keyed by (user, property); a second submission overwrites the first.
type Review struct {
	UserID     uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	PropertyID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"propertyId"`
	Stars      float64   `gorm:"type:numeric(2,1);not null;check:stars BETWEEN 1 AND 5" json:"stars"`
	Comments   *string   `json:"comments"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type PriceHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"propertyId"`
	Price      int       `gorm:"not null" json:"price"`
	PriceStart time.Time `gorm:"not null" json:"priceStart"`
}

// DealRow is one row of the best_deal_properties view.
type DealRow struct {
	PropertyID       uint
	UnitLabel        string
	RentCost         *int
	Bedrooms         *int
	Bathrooms        *float64
	CanRent          bool
	Sqft             *int
	City             string
	StateCode        string
	CityAvgRent      float64
	RentPctOfCityAvg float64
}

func (Address) TableName() string      { return "housing.addresses" }
func (Property) TableName() string     { return "housing.properties" }
func (Review) TableName() string       { return "housing.reviews" }
func (PriceHistory) TableName() string { return "housing.prop_price_history" }
func (DealRow) TableName() string      { return "housing.best_deal_properties" }
