package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"registration-service/internal/api"
	"registration-service/internal/config"
	"registration-service/internal/database"
	"registration-service/internal/events"
	"registration-service/internal/repository"
	"registration-service/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
)

type UsersEndToEndTestSuite struct {
	suite.Suite
	db  *sqlx.DB
	app *fiber.App
}

func (s *UsersEndToEndTestSuite) SetupTest() {
	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"})
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(context.Background(), db))
	s.db = db

	svc := service.NewUserService(repository.NewUserRepository(db), events.NoopPublisher{})
	s.app = api.NewApp("registration-service", api.NewUserHandler(svc))
}

func (s *UsersEndToEndTestSuite) TearDownTest() {
	s.db.Close()
}

func (s *UsersEndToEndTestSuite) countRows() int {
	var n int
	s.Require().NoError(s.db.Get(&n, `SELECT COUNT(*) FROM users`))
	return n
}

func (s *UsersEndToEndTestSuite) listUsers() []api.UserResponse {
	status, b := doJSON(s.T(), s.app, http.MethodGet, "/api/users", "")
	s.Require().Equal(http.StatusOK, status)

	var users []api.UserResponse
	s.Require().NoError(json.Unmarshal(b, &users))
	return users
}

func (s *UsersEndToEndTestSuite) TestCreateThenDuplicate() {
	body := `{"name":"Ann","age":"30","email":"ann@x.com","phone":"555","dob":"1990-01-01"}`
	before := time.Now().UTC().Add(-time.Second)

	status, b := doJSON(s.T(), s.app, http.MethodPost, "/api/users", body)
	s.Require().Equal(http.StatusOK, status, string(b))

	var created api.UserResponse
	s.Require().NoError(json.Unmarshal(b, &created))
	s.NotZero(created.ID)
	s.Equal("Ann", created.Name)
	s.Equal(30, created.Age)
	s.Equal("ann@x.com", created.Email)
	s.Equal("555", created.Phone)
	s.Equal("1990-01-01T00:00:00.000Z", created.DOB)

	createdAt, err := time.Parse(time.RFC3339Nano, created.CreatedAt)
	s.Require().NoError(err)
	s.True(createdAt.After(before))

	status, b = doJSON(s.T(), s.app, http.MethodPost, "/api/users", body)
	s.Equal(http.StatusBadRequest, status)
	s.Equal("A user with this email already exists", errorBody(s.T(), b))
	s.Equal(1, s.countRows())
}

func (s *UsersEndToEndTestSuite) TestMissingFieldWritesNothing() {
	fields := []string{"name", "age", "email", "phone", "dob"}
	for _, missing := range fields {
		payload := map[string]interface{}{
			"name": "Ann", "age": 30, "email": "ann@x.com", "phone": "555", "dob": "1990-01-01",
		}
		delete(payload, missing)
		raw, err := json.Marshal(payload)
		s.Require().NoError(err)

		status, b := doJSON(s.T(), s.app, http.MethodPost, "/api/users", string(raw))
		s.Equal(http.StatusBadRequest, status, missing)
		s.Equal("All fields are required", errorBody(s.T(), b), missing)
	}

	s.Equal(0, s.countRows())
}

func (s *UsersEndToEndTestSuite) TestListReflectsCreates() {
	s.Empty(s.listUsers())

	const n = 4
	for i := 0; i < n; i++ {
		body := fmt.Sprintf(`{"name":"User %d","age":%d,"email":"u%d@x.com","phone":"555","dob":"2000-01-0%dT00:00:00.000Z"}`, i, 20+i, i, i+1)
		status, b := doJSON(s.T(), s.app, http.MethodPost, "/api/users", body)
		s.Require().Equal(http.StatusOK, status, string(b))
	}

	users := s.listUsers()
	s.Require().Len(users, n)
	for i, u := range users {
		s.Equal(fmt.Sprintf("u%d@x.com", i), u.Email)
		s.Equal(20+i, u.Age)
		s.Equal(fmt.Sprintf("2000-01-0%dT00:00:00.000Z", i+1), u.DOB)
	}
}

func TestUsersEndToEnd(t *testing.T) {
	suite.Run(t, new(UsersEndToEndTestSuite))
}
