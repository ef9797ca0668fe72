package repository

import (
	"context"
	"time"

	"hostel/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PackRepository struct {
	db *gorm.DB
}

func NewPackRepository(db *gorm.DB) *PackRepository {
	return &PackRepository{db: db}
}

type packModel struct {
	ID            int64           `gorm:"column:id;primaryKey"`
	Name          string          `gorm:"column:name;size:100"`
	Description   *string         `gorm:"column:description;type:text"`
	DurationDays  int             `gorm:"column:duration_days"`
	OriginalPrice decimal.Decimal `gorm:"column:original_price;type:decimal(10,2)"`
	PromoPrice    decimal.Decimal `gorm:"column:promo_price;type:decimal(10,2)"`
	RoomType      string          `gorm:"column:room_type;size:20"`
	IsActive      bool            `gorm:"column:is_active;index"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (packModel) TableName() string { return "packs" }

type packServiceModel struct {
	PackID    int64 `gorm:"column:pack_id;primaryKey"`
	ServiceID int64 `gorm:"column:service_id;primaryKey"`
}

func (packServiceModel) TableName() string { return "pack_services" }

func toDomainPack(m packModel, services []domain.Service) *domain.Pack {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}
	return &domain.Pack{
		ID:            m.ID,
		Name:          m.Name,
		Description:   desc,
		DurationDays:  m.DurationDays,
		OriginalPrice: m.OriginalPrice,
		PromoPrice:    m.PromoPrice,
		RoomType:      domain.RoomType(m.RoomType),
		Services:      services,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (r *PackRepository) Create(ctx context.Context, p *domain.Pack, serviceIDs []int64) error {
	now := time.Now().UTC()
	m := packModel{
		Name:          p.Name,
		DurationDays:  p.DurationDays,
		OriginalPrice: p.OriginalPrice,
		PromoPrice:    p.PromoPrice,
		RoomType:      string(p.RoomType),
		IsActive:      p.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.Description != "" {
		v := p.Description
		m.Description = &v
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if len(serviceIDs) == 0 {
			return nil
		}
		links := make([]packServiceModel, 0, len(serviceIDs))
		for _, sid := range serviceIDs {
			links = append(links, packServiceModel{PackID: m.ID, ServiceID: sid})
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		return err
	}

	created, err := r.GetByID(ctx, m.ID)
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

// GetByID returns the pack with its included services eagerly resolved.
func (r *PackRepository) GetByID(ctx context.Context, id int64) (*domain.Pack, error) {
	var m packModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}

	var serviceModels []serviceModel
	err := r.db.WithContext(ctx).Raw(`
SELECT s.* FROM services s
JOIN pack_services ps ON ps.service_id = s.id
WHERE ps.pack_id = ?
ORDER BY s.name`, id).Scan(&serviceModels).Error
	if err != nil {
		return nil, err
	}
	services := make([]domain.Service, 0, len(serviceModels))
	for _, sm := range serviceModels {
		services = append(services, toDomainService(sm))
	}

	return toDomainPack(m, services), nil
}

func (r *PackRepository) List(ctx context.Context, activeOnly bool) ([]domain.Pack, error) {
	var models []packModel
	q := r.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Pack, 0, len(models))
	for _, m := range models {
		p, err := r.GetByID(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// UpdatePricing changes both prices together so the promo <= original
// check the service layer performs always sees a consistent pair.
func (r *PackRepository) UpdatePricing(ctx context.Context, id int64, original, promo decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&packModel{}).Where("id = ?", id).
		Updates(map[string]any{
			"original_price": original,
			"promo_price":    promo,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PackRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res := r.db.WithContext(ctx).Model(&packModel{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
