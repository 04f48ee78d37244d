package handlers

import (
	"strings"

	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/middleware"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/repository"
	"github.com/biosecret/go-todo/utils"
	"github.com/gofiber/fiber/v2"
)

func listTitle(req models.ListRequest) (string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return "", models.Required("title")
	}
	if len(title) > 100 {
		return "", &models.ValidationError{Field: "title", Message: "must be at most 100 characters"}
	}
	return title, nil
}

// HandleAllLists lấy các list của user hiện tại
// @Summary  List the caller's todo lists
// @Tags     lists
// @Produce  json
// @Security BearerAuth
// @Param    page     query int    false "page, from 1"
// @Param    per_page query int    false "page size, at most 100"
// @Param    title    query string false "title substring"
// @Success  200 {array} models.TodoList
// @Failure  401 {object} map[string]string
// @Router   /lists [get]
func (h *Handlers) HandleAllLists(c *fiber.Ctx) error {
	id, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	p, err := utils.ParsePagination(c)
	if err != nil {
		return err
	}
	db, err := conn(c)
	if err != nil {
		return err
	}

	lists, err := repository.NewListRepository(db).List(c.UserContext(), id.UserID, p, c.Query("title"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(lists)
}

// HandleCreateList tạo list mới cho user trong token
// @Summary  Create a todo list
// @Tags     lists
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body models.ListRequest true "list"
// @Success  201 {object} models.Created
// @Failure  400 {object} map[string]string
// @Failure  401 {object} map[string]string
// @Router   /lists [post]
func (h *Handlers) HandleCreateList(c *fiber.Ctx) error {
	id, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	var req models.ListRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	title, err := listTitle(req)
	if err != nil {
		return err
	}
	db, err := conn(c)
	if err != nil {
		return err
	}

	l, err := repository.NewListRepository(db).Create(c.UserContext(), id.UserID, title)
	if err != nil {
		return err
	}
	h.publish(events.Event{Type: events.ListCreated, UserID: id.UserID, ListID: l.ID})
	return c.Status(fiber.StatusCreated).JSON(models.Created{ID: l.ID, Title: l.Title})
}

// HandleGetOneList lấy một list theo ID
// @Summary  Get a todo list
// @Tags     lists
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "list id"
// @Success  200 {object} models.TodoList
// @Failure  404 {object} map[string]string
// @Router   /lists/{id} [get]
func (h *Handlers) HandleGetOneList(c *fiber.Ctx) error {
	id, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	db, err := conn(c)
	if err != nil {
		return err
	}

	l, err := repository.NewListRepository(db).Get(c.UserContext(), id.UserID, c.Params("id"))
	if err != nil {
		return notFound(err, "list")
	}
	return c.Status(fiber.StatusOK).JSON(l)
}

// HandleUpdateList cập nhật title của list
// @Summary  Rename a todo list
// @Tags     lists
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string             true "list id"
// @Param    body body models.ListRequest true "new title"
// @Success  200 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Router   /lists/{id} [put]
func (h *Handlers) HandleUpdateList(c *fiber.Ctx) error {
	id, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	var req models.ListRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	title, err := listTitle(req)
	if err != nil {
		return err
	}
	db, err := conn(c)
	if err != nil {
		return err
	}

	listID := c.Params("id")
	if err := repository.NewListRepository(db).Update(c.UserContext(), id.UserID, listID, title); err != nil {
		return notFound(err, "list")
	}
	h.publish(events.Event{Type: events.ListUpdated, UserID: id.UserID, ListID: listID})
	return message(c, "list updated successfully")
}

// HandleDeleteList xóa list và các item của nó
// @Summary  Delete a todo list and its items
// @Tags     lists
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "list id"
// @Success  200 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Router   /lists/{id} [delete]
func (h *Handlers) HandleDeleteList(c *fiber.Ctx) error {
	id, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	db, err := conn(c)
	if err != nil {
		return err
	}

	listID := c.Params("id")
	if err := repository.NewListRepository(db).Delete(c.UserContext(), id.UserID, listID); err != nil {
		return notFound(err, "list")
	}
	h.publish(events.Event{Type: events.ListDeleted, UserID: id.UserID, ListID: listID})
	return message(c, "list deleted successfully")
}
