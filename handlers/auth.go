package handlers

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/repository"
	"github.com/gofiber/fiber/v2"
)

// bcrypt ignores input past 72 bytes and x/crypto refuses it outright.
const maxCredentialLen = 72

// RegisterHandler đăng ký người dùng mới
// @Summary  Register a user
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body models.RegisterRequest true "new user"
// @Success  201 {object} models.User
// @Failure  400 {object} map[string]string
// @Failure  409 {object} map[string]string
// @Router   /auth/register [post]
func (h *Handlers) RegisterHandler(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Username == "":
		return models.Required("username")
	case len(req.Username) > 50:
		return &models.ValidationError{Field: "username", Message: "must be at most 50 characters"}
	case req.Email == "":
		return models.Required("email")
	case len(req.Email) > 100 || !validEmail(req.Email):
		return &models.ValidationError{Field: "email", Message: "must be a valid address"}
	case req.PasswordHash == "":
		return models.Required("password_hash")
	case len(req.PasswordHash) > maxCredentialLen:
		return &models.ValidationError{Field: "password_hash", Message: "must be at most 72 bytes"}
	}

	db, err := conn(c)
	if err != nil {
		return err
	}
	user, err := repository.NewUserRepository(db, h.BcryptCost).Register(c.UserContext(), req.Username, req.Email, req.PasswordHash)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// LoginHandler trả về token cho user hợp lệ
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body models.LoginRequest true "credentials"
// @Success  200 {object} models.LoginResponse
// @Failure  401 {object} map[string]string
// @Router   /auth/login [post]
func (h *Handlers) LoginHandler(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Username = strings.TrimSpace(req.Username)
	switch {
	case req.Username == "":
		return models.Required("username")
	case req.PasswordHash == "":
		return models.Required("password_hash")
	case len(req.PasswordHash) > maxCredentialLen:
		// Cannot match anything stored.
		return repository.ErrInvalidCredentials
	}

	db, err := conn(c)
	if err != nil {
		return err
	}
	user, err := repository.NewUserRepository(db, h.BcryptCost).Authenticate(c.UserContext(), req.Username, req.PasswordHash)
	if errors.Is(err, repository.ErrInvalidCredentials) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return err
	}

	tok, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(models.LoginResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    tok,
	})
}

// LogoutHandler only acknowledges; tokens are stateless and stay valid
// until they expire.
// @Summary  Log out
// @Tags     auth
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   /auth/logout [post]
func (h *Handlers) LogoutHandler(c *fiber.Ctx) error {
	return message(c, "logged out successfully")
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
