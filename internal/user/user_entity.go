package user

import (
	"time"

	"go-leave/internal/domain"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID *string     `gorm:"column:employee_id;type:varchar(32)"`
	Email      string      `gorm:"column:email;type:text;not null;uniqueIndex"`
	Role       domain.Role `gorm:"column:role;type:varchar(16);not null"`
	IsActive   bool        `gorm:"column:is_active"`
	CreatedAt  time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time   `gorm:"column:updated_at;autoUpdateTime"`

	// Minimal employee projection for display.
	Employee *UserEmployee `gorm:"foreignKey:EmployeeID;references:ID"`
}

type UserEmployee struct {
	ID       string `gorm:"primaryKey"`
	FullName string `gorm:"column:full_name"`
}

func (UserEmployee) TableName() string {
	return "employees"
}
