package main

import (
	"context"
	"os"
	"time"

	"hostel/internal/database"
	"hostel/internal/logger"
	"hostel/internal/repository"
)

const defaultPendingTTL = "24h"

// One-shot job, meant for cron: cancels PENDING bookings that were never
// confirmed within the TTL so their beds open up again.
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.ErrorLogger.Fatal("DATABASE_URL is required")
	}

	ttlValue := os.Getenv("PENDING_TTL")
	if ttlValue == "" {
		ttlValue = defaultPendingTTL
	}
	ttl, err := time.ParseDuration(ttlValue)
	if err != nil {
		logger.ErrorLogger.Fatalf("invalid PENDING_TTL %q: %v", ttlValue, err)
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		logger.ErrorLogger.Fatalf("db connect failed: %v", err)
	}

	bookingRepo := repository.NewBookingRepository(db)

	cutoff := time.Now().UTC().Add(-ttl)
	expired, err := bookingRepo.ExpireStalePending(context.Background(), cutoff)
	if err != nil {
		logger.ErrorLogger.Fatalf("cleanup failed: %v", err)
	}

	logger.InfoLogger.Infof("cleanup completed: expired %d stale pending bookings (cutoff %s)", expired, cutoff.Format(time.RFC3339))
}
