package repository

import (
	"context"
	"fmt"
	"time"

	"hostel/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

type roomModel struct {
	ID            int64           `gorm:"column:id;primaryKey"`
	RoomNumber    string          `gorm:"column:room_number;uniqueIndex;size:10"`
	RoomType      string          `gorm:"column:room_type;size:20;index"`
	Description   *string         `gorm:"column:description;type:text"`
	PricePerNight decimal.Decimal `gorm:"column:price_per_night;type:decimal(10,2)"`
	IsActive      bool            `gorm:"column:is_active;index"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

type bedModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	RoomID      int64     `gorm:"column:room_id;index;uniqueIndex:uk_room_bed_number"`
	BedNumber   string    `gorm:"column:bed_number;size:10;uniqueIndex:uk_room_bed_number"`
	IsAvailable bool      `gorm:"column:is_available"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (bedModel) TableName() string { return "beds" }

func toDomainRoom(m roomModel, totalBeds int) *domain.Room {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}
	return &domain.Room{
		ID:            m.ID,
		RoomNumber:    m.RoomNumber,
		RoomType:      domain.RoomType(m.RoomType),
		Description:   desc,
		PricePerNight: m.PricePerNight,
		IsActive:      m.IsActive,
		TotalBeds:     totalBeds,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toDomainBed(m bedModel) domain.Bed {
	return domain.Bed{
		ID:          m.ID,
		RoomID:      m.RoomID,
		BedNumber:   m.BedNumber,
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CreateWithBeds inserts a room and its beds in one transaction. Bed
// numbers are "<room>-1".."<room>-N" where N is the requested bed count.
func (r *RoomRepository) CreateWithBeds(ctx context.Context, room *domain.Room, bedCount int) error {
	now := time.Now().UTC()
	m := roomModel{
		RoomNumber:    room.RoomNumber,
		RoomType:      string(room.RoomType),
		PricePerNight: room.PricePerNight,
		IsActive:      room.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if room.Description != "" {
		v := room.Description
		m.Description = &v
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		beds := make([]bedModel, 0, bedCount)
		for i := 1; i <= bedCount; i++ {
			beds = append(beds, bedModel{
				RoomID:      m.ID,
				BedNumber:   fmt.Sprintf("%s-%d", m.RoomNumber, i),
				IsAvailable: true,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		return tx.Create(&beds).Error
	})
	if err != nil {
		return err
	}

	*room = *toDomainRoom(m, bedCount)
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var m roomModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&bedModel{}).Where("room_id = ?", id).Count(&cnt).Error; err != nil {
		return nil, err
	}
	return toDomainRoom(m, int(cnt)), nil
}

func (r *RoomRepository) List(ctx context.Context, activeOnly bool) ([]domain.Room, error) {
	var models []roomModel
	q := r.db.WithContext(ctx).Order("room_number")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	type bedCount struct {
		RoomID int64 `gorm:"column:room_id"`
		Cnt    int   `gorm:"column:cnt"`
	}
	var counts []bedCount
	if err := r.db.WithContext(ctx).
		Table("beds").
		Select("room_id, COUNT(1) AS cnt").
		Group("room_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byRoom := make(map[int64]int, len(counts))
	for _, c := range counts {
		byRoom[c.RoomID] = c.Cnt
	}

	out := make([]domain.Room, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainRoom(m, byRoom[m.ID]))
	}
	return out, nil
}

func (r *RoomRepository) RoomNumberExists(ctx context.Context, number string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&roomModel{}).Where("room_number = ?", number).Count(&cnt).Error
	return cnt > 0, err
}

func (r *RoomRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res := r.db.WithContext(ctx).Model(&roomModel{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateDetails changes the fields staff may edit after creation. Room
// number, type and bed layout are fixed once beds exist.
func (r *RoomRepository) UpdateDetails(ctx context.Context, id int64, description string, price decimal.Decimal) error {
	var desc *string
	if description != "" {
		desc = &description
	}
	res := r.db.WithContext(ctx).Model(&roomModel{}).Where("id = ?", id).
		Updates(map[string]any{
			"description":     desc,
			"price_per_night": price,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RoomRepository) GetBedsByRoomID(ctx context.Context, roomID int64) ([]domain.Bed, error) {
	var models []bedModel
	if err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("bed_number").Find(&models).Error; err != nil {
		return nil, err
	}
	beds := make([]domain.Bed, 0, len(models))
	for _, m := range models {
		beds = append(beds, toDomainBed(m))
	}
	return beds, nil
}
