package entities

import (
	"time"

	"github.com/google/uuid"
)

type Timestamp struct {
	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"` // "client", "pharmacist"
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`

	Timestamp
}

type Client struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Stars       int       `json:"stars"`
	QRCode      string    `json:"qr_code"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Phone       string    `json:"phone"`

	User     *User      `gorm:"foreignKey:UserID"`
	Receipts []*Receipt `gorm:"foreignKey:ClientID"`
	Timestamp
}

type Pharmacist struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID uuid.UUID `json:"user_id"`

	User *User `gorm:"foreignKey:UserID"`
	Timestamp
}
