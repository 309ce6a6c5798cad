package auth

import "time"

type Session struct {
	Token     string    `gorm:"primaryKey;size:64" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
}

type User struct {
	UserID       uint       `gorm:"column:id;primaryKey" json:"user_id"`
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber  string     `json:"phoneNumber"`
	Gender       string     `json:"gender"`
	BirthDate    *time.Time `gorm:"type:date" json:"birthDate"`
	DisplayName  string     `json:"displayName"`
	UserDesc     string     `json:"description"`
	PictureURL   string     `json:"pictureUrl"`
	CreatedAt    time.Time  `json:"-"`
}

// Landlord and Renter rows are the only record of a user's role.
type Landlord struct {
	UserID uint `gorm:"primaryKey;autoIncrement:false"`
}

type Renter struct {
	UserID          uint   `gorm:"primaryKey;autoIncrement:false" json:"-"`
	DistanceMax     *int   `json:"distanceMax"`
	GenderPreferred string `gorm:"default:'?'" json:"genderPreferred"`
}

func (Session) TableName() string  { return "app_auth.sessions" }
func (User) TableName() string     { return "app_auth.users" }
func (Landlord) TableName() string { return "app_auth.landlords" }
func (Renter) TableName() string   { return "app_auth.renters" }
