package main

import (
	"context"
	"os"

	"github.com/shopspring/decimal"

	"hostel/internal/database"
	"hostel/internal/logger"
	"hostel/internal/modules/auth"
	"hostel/internal/modules/catalog"
	"hostel/internal/pkg/validator"
	"hostel/internal/repository"
)

// Seeds a development database with a small but realistic catalog and an
// admin account. Safe to re-run: duplicate rooms and users are skipped.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "hostel.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		logger.ErrorLogger.Fatal(err)
	}

	logger.InfoLogger.Info("running migrations")
	if err := repository.AutoMigrate(db); err != nil {
		logger.ErrorLogger.Fatal(err)
	}

	ctx := context.Background()

	roomRepo := repository.NewRoomRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	packRepo := repository.NewPackRepository(db)
	userRepo := repository.NewUserRepository(db)

	catalogService := catalog.NewService(roomRepo, serviceRepo, packRepo)
	authService := auth.NewService(userRepo, nil)

	seedAdmin(ctx, authService)
	seedRooms(ctx, catalogService)
	serviceIDs := seedServices(ctx, catalogService)
	seedPacks(ctx, catalogService, serviceIDs)

	logger.InfoLogger.Info("seed completed")
	logger.InfoLogger.Info("admin account: admin@hostel.local / admin-dev-password")
}

func seedAdmin(ctx context.Context, authService *auth.Service) {
	req := auth.CreateUserRequest{
		Email:    "admin@hostel.local",
		Password: "admin-dev-password",
		Name:     "Admin",
		Role:     "admin",
	}
	mustBeValid(req)

	if _, err := authService.CreateUser(ctx, req); err != nil {
		logger.InfoLogger.Infof("admin not created: %v", err)
	}
}

func seedRooms(ctx context.Context, catalogService *catalog.Service) {
	rooms := []catalog.CreateRoomRequest{
		{RoomNumber: "101", RoomType: "DORTOIR", Description: "Eight-bed mixed dorm", PricePerNight: decimal.NewFromFloat(18.50)},
		{RoomNumber: "102", RoomType: "DORTOIR", Description: "Six-bed female dorm", PricePerNight: decimal.NewFromFloat(21.00), BedCount: intPtr(6)},
		{RoomNumber: "201", RoomType: "DOUBLE", Description: "Double room with shared bathroom", PricePerNight: decimal.NewFromFloat(45.00)},
		{RoomNumber: "202", RoomType: "DOUBLE", Description: "Double room, street view", PricePerNight: decimal.NewFromFloat(42.00)},
		{RoomNumber: "301", RoomType: "SINGLE", Description: "Single room under the roof", PricePerNight: decimal.NewFromFloat(60.00)},
	}

	for _, req := range rooms {
		mustBeValid(req)
		room, err := catalogService.CreateRoom(ctx, req)
		if err != nil {
			logger.InfoLogger.Infof("room %s not created: %v", req.RoomNumber, err)
			continue
		}
		logger.InfoLogger.Infof("room %s created (id=%d)", room.RoomNumber, room.ID)
	}
}

func seedServices(ctx context.Context, catalogService *catalog.Service) []int64 {
	services := []catalog.CreateServiceRequest{
		{Name: "Airport shuttle", Description: "Pickup at arrivals hall", Price: decimal.NewFromFloat(25.00), Category: "TRANSPORT", PriceType: "FIXED"},
		{Name: "Breakfast", Description: "Continental breakfast, served 7-10am", Price: decimal.NewFromFloat(8.00), Category: "MEAL", PriceType: "PER_NIGHT"},
		{Name: "City walking tour", Description: "Guided old town tour, 3 hours", Price: decimal.NewFromFloat(15.00), Category: "ACTIVITY", PriceType: "FIXED"},
		{Name: "Towel rental", Description: "Fresh towel for the stay", Price: decimal.NewFromFloat(3.00), Category: "OTHER", PriceType: "FIXED"},
	}

	ids := make([]int64, 0, len(services))
	for _, req := range services {
		mustBeValid(req)
		svc, err := catalogService.CreateService(ctx, req)
		if err != nil {
			logger.InfoLogger.Infof("service %q not created: %v", req.Name, err)
			continue
		}
		ids = append(ids, svc.ID)
	}
	return ids
}

func seedPacks(ctx context.Context, catalogService *catalog.Service, serviceIDs []int64) {
	if len(serviceIDs) < 3 {
		logger.InfoLogger.Info("not enough services for packs, skipping")
		return
	}

	packs := []catalog.CreatePackRequest{
		{
			Name:          "Weekend explorer",
			Description:   "Two dorm nights, breakfast and a walking tour",
			DurationDays:  2,
			OriginalPrice: decimal.NewFromFloat(68.00),
			PromoPrice:    decimal.NewFromFloat(55.00),
			RoomType:      "DORTOIR",
			ServiceIDs:    []int64{serviceIDs[1], serviceIDs[2]},
		},
		{
			Name:          "Arrival comfort",
			Description:   "Double room week with shuttle and breakfast",
			DurationDays:  7,
			OriginalPrice: decimal.NewFromFloat(396.00),
			PromoPrice:    decimal.NewFromFloat(340.00),
			RoomType:      "DOUBLE",
			ServiceIDs:    []int64{serviceIDs[0], serviceIDs[1]},
		},
	}

	for _, req := range packs {
		mustBeValid(req)
		if _, err := catalogService.CreatePack(ctx, req); err != nil {
			logger.InfoLogger.Infof("pack %q not created: %v", req.Name, err)
		}
	}
}

// mustBeValid stops the seed on data that would be rejected at the API
// boundary anyway.
func mustBeValid(v any) {
	if errs := validator.Validate(v); errs != nil {
		logger.ErrorLogger.Fatalf("invalid seed data: %v", errs)
	}
}

func intPtr(n int) *int { return &n }
