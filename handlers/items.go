package handlers

import (
	"strings"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/middleware"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/repository"
	"github.com/biosecret/go-todo/token"
	"github.com/biosecret/go-todo/utils"
	"github.com/gofiber/fiber/v2"
)

// ownedList resolves the :id list under the caller. Every item route goes
// through here, so items of another user's list are never reachable.
func ownedList(c *fiber.Ctx) (token.Identity, database.Querier, *models.TodoList, error) {
	id, err := middleware.Identity(c)
	if err != nil {
		return id, nil, nil, err
	}
	db, err := conn(c)
	if err != nil {
		return id, nil, nil, err
	}
	l, err := repository.NewListRepository(db).Get(c.UserContext(), id.UserID, c.Params("id"))
	if err != nil {
		return id, nil, nil, notFound(err, "list")
	}
	return id, db, l, nil
}

func checkItemTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", models.Required("title")
	}
	if len(title) > 255 {
		return "", &models.ValidationError{Field: "title", Message: "must be at most 255 characters"}
	}
	return title, nil
}

// HandleAllItems lấy các item của một list, có phân trang
// @Summary  List items of a todo list
// @Tags     items
// @Produce  json
// @Security BearerAuth
// @Param    id       path  string true  "list id"
// @Param    page     query int    false "page, from 1"
// @Param    per_page query int    false "page size, at most 100"
// @Param    title    query string false "title substring"
// @Success  200 {object} models.Page[models.TodoItem]
// @Failure  404 {object} map[string]string
// @Router   /lists/{id}/items [get]
func (h *Handlers) HandleAllItems(c *fiber.Ctx) error {
	p, err := utils.ParsePagination(c)
	if err != nil {
		return err
	}
	_, db, l, err := ownedList(c)
	if err != nil {
		return err
	}

	items, total, err := repository.NewItemRepository(db).List(c.UserContext(), l.ID, p, c.Query("title"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(models.Page[models.TodoItem]{
		Data:  items,
		Page:  p.Page,
		Limit: p.PerPage,
		Total: total,
	})
}

// HandleCreateItem tạo item mới trong list
// @Summary  Create an item
// @Tags     items
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string                   true "list id"
// @Param    body body models.CreateItemRequest true "item"
// @Success  201 {object} models.Created
// @Failure  400 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Router   /lists/{id}/items [post]
func (h *Handlers) HandleCreateItem(c *fiber.Ctx) error {
	var req models.CreateItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	title, err := checkItemTitle(req.Title)
	if err != nil {
		return err
	}
	req.Title = title

	id, db, l, err := ownedList(c)
	if err != nil {
		return err
	}
	it, err := repository.NewItemRepository(db).Create(c.UserContext(), l.ID, req)
	if err != nil {
		return err
	}
	h.publish(events.Event{Type: events.ItemCreated, UserID: id.UserID, ListID: l.ID, ItemID: it.ID})
	return c.Status(fiber.StatusCreated).JSON(models.Created{ID: it.ID, Title: it.Title})
}

// HandleGetOneItem lấy một item theo ID
// @Summary  Get an item
// @Tags     items
// @Produce  json
// @Security BearerAuth
// @Param    id      path string true "list id"
// @Param    item_id path string true "item id"
// @Success  200 {object} models.TodoItem
// @Failure  404 {object} map[string]string
// @Router   /lists/{id}/items/{item_id} [get]
func (h *Handlers) HandleGetOneItem(c *fiber.Ctx) error {
	_, db, l, err := ownedList(c)
	if err != nil {
		return err
	}
	it, err := repository.NewItemRepository(db).Get(c.UserContext(), l.ID, c.Params("item_id"))
	if err != nil {
		return notFound(err, "item")
	}
	return c.Status(fiber.StatusOK).JSON(it)
}

// HandleUpdateItem cập nhật các field được gửi lên
// @Summary  Update fields of an item
// @Tags     items
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id      path string                   true "list id"
// @Param    item_id path string                   true "item id"
// @Param    body    body models.UpdateItemRequest true "fields to change"
// @Success  200 {object} map[string]string
// @Failure  400 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Router   /lists/{id}/items/{item_id} [put]
func (h *Handlers) HandleUpdateItem(c *fiber.Ctx) error {
	var req models.UpdateItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Empty() {
		return &models.ValidationError{Field: "body", Message: "at least one field is required"}
	}
	if req.Title != nil {
		title, err := checkItemTitle(*req.Title)
		if err != nil {
			return err
		}
		req.Title = &title
	}

	id, db, l, err := ownedList(c)
	if err != nil {
		return err
	}
	itemID := c.Params("item_id")
	if err := repository.NewItemRepository(db).Update(c.UserContext(), l.ID, itemID, req); err != nil {
		return notFound(err, "item")
	}
	h.publish(events.Event{Type: events.ItemUpdated, UserID: id.UserID, ListID: l.ID, ItemID: itemID})
	return message(c, "item updated successfully")
}

// HandleDeleteItem xóa một item
// @Summary  Delete an item
// @Tags     items
// @Produce  json
// @Security BearerAuth
// @Param    id      path string true "list id"
// @Param    item_id path string true "item id"
// @Success  200 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Router   /lists/{id}/items/{item_id} [delete]
func (h *Handlers) HandleDeleteItem(c *fiber.Ctx) error {
	id, db, l, err := ownedList(c)
	if err != nil {
		return err
	}
	itemID := c.Params("item_id")
	if err := repository.NewItemRepository(db).Delete(c.UserContext(), l.ID, itemID); err != nil {
		return notFound(err, "item")
	}
	h.publish(events.Event{Type: events.ItemDeleted, UserID: id.UserID, ListID: l.ID, ItemID: itemID})
	return message(c, "item deleted successfully")
}
