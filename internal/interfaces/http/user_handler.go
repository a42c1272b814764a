package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tienda-pos/backoffice-api/internal/application/dto"
	"github.com/tienda-pos/backoffice-api/internal/application/usecase"
)

// UserHandler gestión de usuarios (solo owner).
type UserHandler struct {
	uc *usecase.UserUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserListEnvelope
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.UserListEnvelope{Users: users})
}

// Invite godoc
// @Summary      Invitar usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InviteUserRequest  true  "username, password, fullName, role"
// @Success      201   {object}  dto.UserEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/invite [post]
func (h *UserHandler) Invite(c *fiber.Ctx) error {
	var in dto.InviteUserRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	user, err := h.uc.Invite(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.UserEnvelope{User: user})
}

// ChangeRole godoc
// @Summary      Cambiar rol de un usuario
// @Description  Un owner no puede cambiar su propio rol.
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.ChangeRoleRequest  true  "role"
// @Success      200   {object}  dto.UserEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/{id}/role [patch]
func (h *UserHandler) ChangeRole(c *fiber.Ctx) error {
	var in dto.ChangeRoleRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	user, err := h.uc.ChangeRole(c.UserContext(), GetUserID(c), c.Params("id"), in.Role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.UserEnvelope{User: user})
}
