package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/todo-service/internal/api/dto"
	"github.com/spec-kit/todo-service/internal/auth"
	"github.com/spec-kit/todo-service/internal/service"
)

// TodosHandler manages the owner-scoped todo endpoints. Every route it serves
// sits behind the auth middleware.
type TodosHandler struct {
	service *service.TodoService
}

// NewTodosHandler constructs handler.
func NewTodosHandler(todoService *service.TodoService) *TodosHandler {
	return &TodosHandler{service: todoService}
}

// List GET /todos.
func (h *TodosHandler) List(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ErrUnauthorized
	}
	todos, err := h.service.List(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTodoListResponse(todos))
}

// Create POST /todos.
func (h *TodosHandler) Create(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ErrUnauthorized
	}
	var req dto.CreateTodoRequest
	if err := c.BodyParser(&req); err != nil || req.Text == nil {
		return service.ErrInvalidTodo
	}

	todo, err := h.service.Create(c.UserContext(), caller, service.TodoCreateInput{Text: *req.Text, Done: req.Done})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTodoResponse(todo))
}

// Update PUT /todos/:id.
func (h *TodosHandler) Update(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ErrUnauthorized
	}
	var req dto.UpdateTodoRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return service.ErrInvalidTodo
		}
	}

	todo, err := h.service.Update(c.UserContext(), caller, c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTodoResponse(todo))
}

// Delete DELETE /todos/:id.
func (h *TodosHandler) Delete(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ErrUnauthorized
	}
	if err := h.service.Delete(c.UserContext(), caller, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
