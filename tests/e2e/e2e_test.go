package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hostel/internal/database"
	"hostel/internal/domain"
	"hostel/internal/middleware"
	"hostel/internal/modules/auth"
	"hostel/internal/modules/booking"
	"hostel/internal/modules/catalog"
	"hostel/internal/notification"
	jwtsvc "hostel/internal/pkg/jwt"
	"hostel/internal/repository"
)

type E2ETestSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	jwtService *jwtsvc.Service
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")

	// every pooled connection opens its own in-memory database, so the
	// whole suite has to share a single one
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repository.AutoMigrate(db))

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	packRepo := repository.NewPackRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	authService := auth.NewService(userRepo, jwtService)
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(roomRepo, serviceRepo, packRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	bookingStore := booking.NewGormStore(bookingRepo)
	codegen := booking.NewCodeGenerator(booking.NewCryptoSource())
	bookingService := booking.NewService(bookingStore, codegen, notification.LogSender{})
	availability := booking.NewAvailability(bookingStore, roomRepo)
	bookingHandler := booking.NewHandler(bookingService, availability)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// mirrors the wiring in cmd/api
	v1 := r.Group("/api/v1")

	authHandler.RegisterRoutes(v1)
	catalogHandler.RegisterRoutes(v1)
	bookingHandler.RegisterRoutes(v1)

	protected := v1.Group("/")
	protected.Use(middleware.JWTAuth(jwtService))
	authHandler.RegisterProtectedRoutes(protected)

	admin := v1.Group("/admin")
	admin.Use(middleware.JWTAuth(jwtService), middleware.AdminOnly())
	authHandler.RegisterAdminRoutes(admin)
	catalogHandler.RegisterAdminRoutes(admin)
	bookingHandler.RegisterAdminRoutes(admin)

	// seed the admin account the flows log in with
	hash, err := bcrypt.GenerateFromPassword([]byte("AdminPass123!"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(context.Background(), &domain.User{
		Email:        "admin@hostel.test",
		PasswordHash: string(hash),
		Name:         "Admin User",
		Role:         domain.RoleAdmin,
	}))

	return &E2ETestSuite{router: r, db: db, jwtService: jwtService}
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "unparseable response: %s", w.Body.String())
	return &resp
}

func (s *E2ETestSuite) loginAdmin(t *testing.T) string {
	w := s.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    "admin@hostel.test",
		"password": "AdminPass123!",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, "admin login failed: %s", w.Body.String())

	resp := parseResponse(t, w)
	token, ok := resp.Data["access_token"].(string)
	require.True(t, ok, "no access_token in login response")
	return token
}

// createDorm provisions a dorm room through the admin API and returns the
// room ID with its bed IDs.
func (s *E2ETestSuite) createDorm(t *testing.T, token, number string) (int64, []int64) {
	w := s.makeRequest("POST", "/api/v1/admin/rooms", map[string]interface{}{
		"room_number":     number,
		"room_type":       "DORTOIR",
		"description":     "Eight-bed dorm",
		"price_per_night": "20.00",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, "room creation failed: %s", w.Body.String())

	resp := parseResponse(t, w)
	roomData := resp.Data["room"].(map[string]interface{})
	roomID := int64(roomData["id"].(float64))

	w = s.makeRequest("GET", fmt.Sprintf("/api/v1/rooms/%d", roomID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp = parseResponse(t, w)
	rawBeds := resp.Data["beds"].([]interface{})
	bedIDs := make([]int64, 0, len(rawBeds))
	for _, raw := range rawBeds {
		bed := raw.(map[string]interface{})
		bedIDs = append(bedIDs, int64(bed["id"].(float64)))
	}
	require.NotEmpty(t, bedIDs)
	return roomID, bedIDs
}

func dateIn(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestFlow1_StaffAuthentication(t *testing.T) {
	suite := setupTestSuite(t)

	adminToken := suite.loginAdmin(t)

	t.Run("GET /auth/me", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/auth/me", nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		assert.True(t, resp.Success)
		user := resp.Data["user"].(map[string]interface{})
		assert.Equal(t, "admin@hostel.test", user["email"])
	})

	t.Run("POST /admin/users creates staff", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/admin/users", map[string]interface{}{
			"email":    "reception@hostel.test",
			"password": "StaffPass123!",
			"name":     "Front Desk",
			"role":     "staff",
		}, adminToken)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		// the new account can log in
		w = suite.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
			"email":    "reception@hostel.test",
			"password": "StaffPass123!",
		}, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("staff cannot reach admin endpoints", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
			"email":    "reception@hostel.test",
			"password": "StaffPass123!",
		}, "")
		require.Equal(t, http.StatusOK, w.Code)
		staffToken := parseResponse(t, w).Data["access_token"].(string)

		w = suite.makeRequest("GET", "/api/v1/admin/bookings", nil, staffToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
			"email":    "admin@hostel.test",
			"password": "nope",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		resp := parseResponse(t, w)
		assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
	})

	t.Run("admin endpoints require a token", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/admin/bookings", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestFlow2_GuestBooking(t *testing.T) {
	suite := setupTestSuite(t)

	adminToken := suite.loginAdmin(t)
	_, bedIDs := suite.createDorm(t, adminToken, "101")

	var reference, accessCode string

	t.Run("POST /bookings", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"guest_name":     "Marie Dupont",
			"guest_email":    "marie@example.com",
			"guest_phone":    "+33 6 12 34 56 78",
			"check_in_date":  dateIn(7),
			"check_out_date": dateIn(9),
			"bed_ids":        bedIDs[:2],
		}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := parseResponse(t, w)
		b := resp.Data["booking"].(map[string]interface{})

		reference = b["booking_reference"].(string)
		accessCode = b["access_code"].(string)
		assert.Regexp(t, regexp.MustCompile(`^BK-\d{8}-[A-Z0-9]{5}$`), reference)
		assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), accessCode)
		assert.Equal(t, "CONFIRMED", b["status"])
		assert.Equal(t, "UNPAID", b["payment_status"])
		// 2 beds x 20.00 x 2 nights
		total, err := decimal.NewFromString(b["total_price"].(string))
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(80)), "got total %s", total)
	})

	t.Run("GET /bookings/reference/:reference", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/bookings/reference/"+reference, nil, "")
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		b := resp.Data["booking"].(map[string]interface{})
		assert.Equal(t, accessCode, b["access_code"])
	})

	t.Run("GET /bookings/code/:code", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/bookings/code/"+accessCode, nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("overlapping booking is rejected", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"guest_name":     "Jan Kowalski",
			"guest_email":    "jan@example.com",
			"guest_phone":    "+48 600 000 000",
			"check_in_date":  dateIn(8),
			"check_out_date": dateIn(10),
			"bed_ids":        bedIDs[:1],
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)

		resp := parseResponse(t, w)
		assert.Equal(t, "BOOKING_CONFLICT", resp.Error.Code)
	})

	t.Run("back-to-back booking is accepted", func(t *testing.T) {
		// checks in on the previous guest's checkout day
		w := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"guest_name":     "Jan Kowalski",
			"guest_email":    "jan@example.com",
			"guest_phone":    "+48 600 000 000",
			"check_in_date":  dateIn(9),
			"check_out_date": dateIn(11),
			"bed_ids":        bedIDs[:1],
		}, "")
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("GET /availability/rooms/:id", func(t *testing.T) {
		roomID, _ := suite.createDorm(t, adminToken, "102")
		w := suite.makeRequest("GET",
			fmt.Sprintf("/api/v1/availability/rooms/%d?check_in=%s&check_out=%s", roomID, dateIn(7), dateIn(9)), nil, "")
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		report := resp.Data["availability"].(map[string]interface{})
		assert.Equal(t, true, report["is_available"])
		assert.Equal(t, float64(8), report["available_beds"], "untouched dorm should be fully free")
		assert.Len(t, report["available_bed_ids"].([]interface{}), 8)
	})
}

func TestFlow3_BookingLifecycle(t *testing.T) {
	suite := setupTestSuite(t)

	adminToken := suite.loginAdmin(t)
	_, bedIDs := suite.createDorm(t, adminToken, "201")

	var bookingID int64

	t.Run("Setup: guest books a bed", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"guest_name":     "Ana Silva",
			"guest_email":    "ana@example.com",
			"guest_phone":    "+351 910 000 000",
			"check_in_date":  dateIn(3),
			"check_out_date": dateIn(5),
			"bed_ids":        bedIDs[:1],
		}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := parseResponse(t, w)
		b := resp.Data["booking"].(map[string]interface{})
		bookingID = int64(b["id"].(float64))
	})

	t.Run("GET /admin/bookings", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/admin/bookings", nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		bookings := resp.Data["bookings"].([]interface{})
		assert.Len(t, bookings, 1)
	})

	t.Run("GET /admin/bookings/check-ins", func(t *testing.T) {
		// arrivals list covers bookings still awaiting check-in
		w := suite.makeRequest("GET", "/api/v1/admin/bookings/check-ins?date="+dateIn(3), nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		bookings := resp.Data["bookings"].([]interface{})
		assert.Len(t, bookings, 1)
	})

	t.Run("PATCH /admin/bookings/:id/status to CHECKED_IN", func(t *testing.T) {
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/admin/bookings/%d/status", bookingID),
			map[string]interface{}{"status": "CHECKED_IN"}, adminToken)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := parseResponse(t, w)
		b := resp.Data["booking"].(map[string]interface{})
		assert.Equal(t, "CHECKED_IN", b["status"])
	})

	t.Run("cancel is refused once checked in", func(t *testing.T) {
		w := suite.makeRequest("POST", fmt.Sprintf("/api/v1/admin/bookings/%d/cancel", bookingID), nil, adminToken)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("illegal transition and legal rollback", func(t *testing.T) {
		// CHECKED_IN is only reachable from CONFIRMED, so re-checking in fails
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/admin/bookings/%d/status", bookingID),
			map[string]interface{}{"status": "CHECKED_IN"}, adminToken)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		// rolling back to CONFIRMED is allowed, as is checking in again
		w = suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/admin/bookings/%d/status", bookingID),
			map[string]interface{}{"status": "CONFIRMED"}, adminToken)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/admin/bookings/%d/status", bookingID),
			map[string]interface{}{"status": "CHECKED_IN"}, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("PATCH /admin/bookings/:id/payment", func(t *testing.T) {
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/admin/bookings/%d/payment", bookingID),
			map[string]interface{}{"payment_status": "PAID"}, adminToken)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := parseResponse(t, w)
		b := resp.Data["booking"].(map[string]interface{})
		assert.Equal(t, "PAID", b["payment_status"])
	})

	t.Run("GET /admin/bookings/check-outs", func(t *testing.T) {
		// the guest is checked in, so the departure list picks them up
		w := suite.makeRequest("GET", "/api/v1/admin/bookings/check-outs?date="+dateIn(5), nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		bookings := resp.Data["bookings"].([]interface{})
		assert.Len(t, bookings, 1)
	})

	t.Run("check out and purge", func(t *testing.T) {
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/admin/bookings/%d/status", bookingID),
			map[string]interface{}{"status": "CHECKED_OUT"}, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = suite.makeRequest("DELETE", fmt.Sprintf("/api/v1/admin/bookings/%d", bookingID), nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = suite.makeRequest("GET", fmt.Sprintf("/api/v1/admin/bookings/%d", bookingID), nil, adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestConcurrentBookingCreation(t *testing.T) {
	suite := setupTestSuite(t)

	adminToken := suite.loginAdmin(t)
	_, bedIDs := suite.createDorm(t, adminToken, "301")

	// every request races for the same bed over the same nights
	const attempts = 8
	results := make(chan *httptest.ResponseRecorder, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
				"guest_name":     fmt.Sprintf("Guest %d", n),
				"guest_email":    fmt.Sprintf("guest%d@example.com", n),
				"guest_phone":    "+33 6 00 00 00 00",
				"check_in_date":  dateIn(10),
				"check_out_date": dateIn(12),
				"bed_ids":        bedIDs[:1],
			}, "")
		}(i)
	}
	wg.Wait()
	close(results)

	var created, conflicted int
	for w := range results {
		switch w.Code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
			resp := parseResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "BOOKING_CONFLICT", resp.Error.Code)
		default:
			t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
		}
	}

	assert.Equal(t, 1, created, "exactly one racer may win the bed")
	assert.Equal(t, attempts-1, conflicted)
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
