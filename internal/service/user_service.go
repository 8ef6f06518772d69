package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"registration-service/internal/events"
	"registration-service/internal/model"
	"registration-service/internal/repository"
)

// CreateUserInput carries the raw form values. Age and DOB are coerced by
// CreateUser.
type CreateUserInput struct {
	Name  string `validate:"required"`
	Age   string `validate:"required"`
	Email string `validate:"required"`
	Phone string `validate:"required"`
	DOB   string `validate:"required"`
}

type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type userService struct {
	userRepo  repository.UserRepository
	publisher events.EventPublisher
	validate  *validator.Validate
}

func NewUserService(userRepo repository.UserRepository, publisher events.EventPublisher) UserService {
	return &userService{
		userRepo:  userRepo,
		publisher: publisher,
		validate:  validator.New(),
	}
}

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, newFieldsRequiredError(err)
	}

	age, err := parseAge(input.Age)
	if err != nil {
		return nil, &ValidationError{Message: MsgInvalidAge, Fields: []string{"age"}}
	}

	dob, err := parseDOB(input.DOB)
	if err != nil {
		return nil, &ValidationError{Message: MsgInvalidDOB, Fields: []string{"dob"}}
	}

	user := &model.User{
		Name:  input.Name,
		Age:   age,
		Email: input.Email,
		Phone: input.Phone,
		DOB:   dob,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, &ConflictError{Message: MsgEmailTaken}
		}
		return nil, &StorageError{Op: "create user", Err: err}
	}

	if err := s.publisher.PublishUserCreated(ctx, user); err != nil {
		slog.WarnContext(ctx, "Failed to publish user created event", "user_id", user.ID, "error", err)
	}

	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list users", Err: err}
	}

	return users, nil
}

func newFieldsRequiredError(err error) error {
	verr := &ValidationError{Message: MsgFieldsRequired}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.Fields = append(verr.Fields, strings.ToLower(fe.Field()))
		}
	}

	return verr
}

// parseAge accepts integers and integral floats such as "30" or "30.0",
// both bounded to the int32 range of the age column.
func parseAge(raw string) (int, error) {
	raw = strings.TrimSpace(raw)

	if age, err := strconv.ParseInt(raw, 10, 32); err == nil {
		return int(age), nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, err
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, strconv.ErrRange
	}

	return int(f), nil
}

var dobLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// parseDOB accepts a plain date or an RFC 3339 date-time. Results are in UTC.
func parseDOB(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	var lastErr error
	for _, layout := range dobLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}
