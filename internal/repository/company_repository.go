package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"salon-notify/internal/model"
)

// CompanyRepository manages the singleton company record.
type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *CompanyRepository) WithTx(tx *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: tx}
}

// GetOrCreate returns the company row, seeding it with the given name
// and address on first use.
func (r *CompanyRepository) GetOrCreate(ctx context.Context, name, address string) (*model.Company, error) {
	var company model.Company
	db := r.db.WithContext(ctx)
	err := db.First(&company).Error
	switch {
	case err == nil:
		return &company, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		company = model.Company{Name: name, Address: address}
		if err := db.Create(&company).Error; err != nil {
			return nil, fmt.Errorf("create company: %w", err)
		}
		return &company, nil
	default:
		return nil, fmt.Errorf("find company: %w", err)
	}
}

func (r *CompanyRepository) FindByID(ctx context.Context, id uint) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}
