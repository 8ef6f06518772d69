package api

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"registration-service/internal/model"
	"registration-service/internal/service"
)

const (
	msgCreateFailed = "Error creating user"
	msgFetchFailed  = "Error fetching users"

	// JavaScript Date#toISOString layout
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// NumberOrString decodes a JSON string or number into its text form.
type NumberOrString string

func (n *NumberOrString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = NumberOrString(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = NumberOrString(num.String())

	return nil
}

type CreateUserRequest struct {
	Name  string         `json:"name"`
	Age   NumberOrString `json:"age"`
	Email string         `json:"email"`
	Phone string         `json:"phone"`
	DOB   string         `json:"dob"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	DOB       string `json:"dob"`
	CreatedAt string `json:"createdAt"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Age:       u.Age,
		Email:     u.Email,
		Phone:     u.Phone,
		DOB:       u.DOB.UTC().Format(isoMillis),
		CreatedAt: u.CreatedAt.UTC().Format(isoMillis),
	}
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	// the body is JSON regardless of Content-Type
	var req CreateUserRequest
	if err := c.App().Config().JSONDecoder(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	user, err := h.userService.CreateUser(ctx, service.CreateUserInput{
		Name:  req.Name,
		Age:   string(req.Age),
		Email: req.Email,
		Phone: req.Phone,
		DOB:   req.DOB,
	})
	if err != nil {
		var validationErr *service.ValidationError
		var conflictErr *service.ConflictError

		switch {
		case errors.As(err, &validationErr):
			slog.InfoContext(ctx, "Rejected user input", "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Message})
		case errors.As(err, &conflictErr):
			slog.InfoContext(ctx, "Rejected duplicate user", "email", req.Email)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": conflictErr.Message})
		default:
			slog.ErrorContext(ctx, "Error creating user", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgCreateFailed})
		}
	}

	return c.Status(fiber.StatusOK).JSON(NewUserResponse(user))
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()

	users, err := h.userService.ListUsers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error fetching users", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgFetchFailed})
	}

	response := make([]UserResponse, 0, len(users))
	for i := range users {
		response = append(response, NewUserResponse(&users[i]))
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// RegistrationPage renders the form and the current user list.
func (h *UserHandler) RegistrationPage(c *fiber.Ctx) error {
	ctx := c.UserContext()

	users, err := h.userService.ListUsers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error fetching users for page", "error", err)
		c.Status(fiber.StatusInternalServerError)
		return c.Render("index", fiber.Map{"Error": "Failed to load users"})
	}

	return c.Render("index", fiber.Map{"Users": users})
}
