package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/birlikkoshan/todo-serverless/internal/dto"
	"github.com/birlikkoshan/todo-serverless/internal/service"

	"github.com/gin-gonic/gin"
)

// statusClientClosedRequest is the nginx convention for a request the client abandoned.
const statusClientClosedRequest = 499

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// List godoc
// @Summary      List all todos
// @Tags         todos
// @Produce      json
// @Success      200  {array}   dto.TodoResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Failure      504  {object}  dto.ErrorResponse
// @Router       /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, "list todos", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponses(list))
}

// GetByID godoc
// @Summary      Get a todo by ID
// @Tags         todos
// @Produce      json
// @Param        id   path      string  true  "Todo ID"
// @Success      200  {object}  dto.TodoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos/{id} [get]
func (h *TodoHandler) GetByID(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "get todo", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponse(t))
}

// Create godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTodoRequest  true  "Todo body"
// @Success      201   {object}  dto.TodoResponse
// @Header       201   {string}  Location  "/api/todos/{id}"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := bindStrictJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	t, err := h.svc.Create(c.Request.Context(), req.Todo())
	if err != nil {
		writeError(c, "create todo", err)
		return
	}
	c.Header("Location", todoLocation(c, t.ID))
	c.JSON(http.StatusCreated, dto.NewTodoResponse(t))
}

// Update godoc
// @Summary      Replace a todo
// @Description  Full overwrite: fields left out are reset. The body id must equal the path id.
// @Tags         todos
// @Accept       json
// @Param        id    path  string                 true  "Todo ID"
// @Param        body  body  dto.UpdateTodoRequest  true  "Full todo"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /todos/{id} [put]
func (h *TodoHandler) Update(c *gin.Context) {
	var req dto.UpdateTodoRequest
	if err := bindStrictJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.svc.Update(c.Request.Context(), c.Param("id"), req.Todo()); err != nil {
		writeError(c, "update todo", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete godoc
// @Summary      Delete a todo
// @Description  Succeeds whether or not the todo existed.
// @Tags         todos
// @Param        id   path  string  true  "Todo ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, "delete todo", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Toggle godoc
// @Summary      Flip a todo's completion flag
// @Tags         todos
// @Param        id   path  string  true  "Todo ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos/{id}/toggle [patch]
func (h *TodoHandler) Toggle(c *gin.Context) {
	if _, err := h.svc.Toggle(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, "toggle todo", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// todoLocation builds the URL of a todo next to the collection the request hit.
func todoLocation(c *gin.Context, id string) string {
	return c.FullPath() + "/" + id
}

// writeError maps service errors to a status and a short message.
// Server-side failures are logged with their cause and answered generically.
func writeError(c *gin.Context, op string, err error) {
	status, msg := http.StatusInternalServerError, "failed to "+op
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrBadRequest):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrTimeout):
		status, msg = http.StatusGatewayTimeout, "request timed out"
	case errors.Is(err, service.ErrCanceled):
		// client went away; nobody reads this response
		c.AbortWithStatus(statusClientClosedRequest)
		return
	}
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, dto.ErrorResponse{Error: msg})
}
