package models

import "time"

type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleDepartment UserRole = "DEPARTMENT"
)

// Department is a physical workshop a DEPARTMENT user belongs to. Only
// MATERIALS, WOOD and FOAM have cutting rules.
type Department string

const (
	DeptWood       Department = "WOOD"
	DeptFoam       Department = "FOAM"
	DeptMaterials  Department = "MATERIALS"
	DeptUpholstery Department = "UPHOLSTERY"
	DeptPackaging  Department = "PACKAGING"
	DeptDelivery   Department = "DELIVERY"
	DeptInventory  Department = "INVENTORY"
)

var Departments = []Department{
	DeptWood, DeptFoam, DeptMaterials, DeptUpholstery, DeptPackaging, DeptDelivery, DeptInventory,
}

func (d Department) Valid() bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleDepartment
}

type User struct {
	ID           uint        `gorm:"primaryKey"`
	Email        string      `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string      `gorm:"size:255;not null"`
	Role         UserRole    `gorm:"size:20;not null"`
	Department   *Department `gorm:"size:20"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
