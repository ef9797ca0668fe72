package repository

import (
	"context"
	"time"

	"hostel/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

type serviceModel struct {
	ID          int64           `gorm:"column:id;primaryKey"`
	Name        string          `gorm:"column:name;size:100"`
	Description *string         `gorm:"column:description;type:text"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(10,2)"`
	Category    string          `gorm:"column:category;size:20;index"`
	PriceType   string          `gorm:"column:price_type;size:20"`
	IsActive    bool            `gorm:"column:is_active;index"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (serviceModel) TableName() string { return "services" }

func toDomainService(m serviceModel) domain.Service {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}
	return domain.Service{
		ID:          m.ID,
		Name:        m.Name,
		Description: desc,
		Price:       m.Price,
		Category:    domain.ServiceCategory(m.Category),
		PriceType:   domain.PriceType(m.PriceType),
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toServiceModel(s *domain.Service) serviceModel {
	var desc *string
	if s.Description != "" {
		v := s.Description
		desc = &v
	}
	return serviceModel{
		ID:          s.ID,
		Name:        s.Name,
		Description: desc,
		Price:       s.Price,
		Category:    string(s.Category),
		PriceType:   string(s.PriceType),
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	m := toServiceModel(s)
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*s = toDomainService(m)
	return nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var m serviceModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	s := toDomainService(m)
	return &s, nil
}

// GetByIDs resolves a batch of service ids. A shorter result than the input
// means at least one id is unknown; the caller treats that as not found.
func (r *ServiceRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []serviceModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Service, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainService(m))
	}
	return out, nil
}

func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	var models []serviceModel
	q := r.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Service, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainService(m))
	}
	return out, nil
}

// UpdateDetails changes description and price. Name, category and price
// type are fixed: existing bookings reference the service by what it was.
func (r *ServiceRepository) UpdateDetails(ctx context.Context, id int64, description string, price decimal.Decimal) error {
	var desc *string
	if description != "" {
		desc = &description
	}
	res := r.db.WithContext(ctx).Model(&serviceModel{}).Where("id = ?", id).
		Updates(map[string]any{
			"description": desc,
			"price":       price,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ServiceRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res := r.db.WithContext(ctx).Model(&serviceModel{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
