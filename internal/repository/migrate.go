package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every persisted model.
// The gorm models are package-private; this is the only migration entry point.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&roomModel{},
		&bedModel{},
		&serviceModel{},
		&packModel{},
		&packServiceModel{},
		&bookingModel{},
		&bookingBedModel{},
		&bookingServiceModel{},
		&userModel{},
	)
}
