package partner

import (
	"strings"
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
)

// SupplierType distinguishes where goods come from and where they go
type SupplierType string

const (
	// SupplierTypeIn marks a partner goods are received from
	SupplierTypeIn SupplierType = "in"
	// SupplierTypeOut marks a partner goods are shipped to
	SupplierTypeOut SupplierType = "out"
)

// IsValid returns true if the supplier type is valid
func (t SupplierType) IsValid() bool {
	return t == SupplierTypeIn || t == SupplierTypeOut
}

// Supplier represents a trading partner referenced by stock transactions.
// Suppliers with transaction history cannot be hard-deleted and must be
// deactivated instead.
type Supplier struct {
	shared.BaseAggregateRoot
	Name          string       `gorm:"type:varchar(100);not null;uniqueIndex"`
	ContactPerson string       `gorm:"type:varchar(100)"`
	Phone         string       `gorm:"type:varchar(20)"`
	Email         string       `gorm:"type:varchar(100)"`
	Address       string       `gorm:"type:text"`
	SupplierType  SupplierType `gorm:"type:varchar(20);not null"`
	IsActive      bool         `gorm:"not null;default:true"`
	SortOrder     int          `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new active supplier
func NewSupplier(name string, supplierType SupplierType) (*Supplier, error) {
	if err := validateSupplierName(name); err != nil {
		return nil, err
	}
	if !supplierType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier type must be \"in\" or \"out\"")
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		SupplierType:      supplierType,
		IsActive:          true,
	}, nil
}

// Update updates the supplier's attributes
func (s *Supplier) Update(name, contactPerson, phone, email, address string, supplierType SupplierType) error {
	if err := validateSupplierName(name); err != nil {
		return err
	}
	if !supplierType.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Supplier type must be \"in\" or \"out\"")
	}

	s.Name = strings.TrimSpace(name)
	s.ContactPerson = contactPerson
	s.Phone = phone
	s.Email = email
	s.Address = address
	s.SupplierType = supplierType
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Activate marks the supplier as active
func (s *Supplier) Activate() {
	s.IsActive = true
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Deactivate marks the supplier as inactive.
// Deactivation is the delete path for suppliers with transaction history.
func (s *Supplier) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// SetSortOrder sets the display order of the supplier
func (s *Supplier) SetSortOrder(order int) {
	s.SortOrder = order
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

func validateSupplierName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Supplier name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_INPUT", "Supplier name cannot exceed 100 characters")
	}
	return nil
}
