package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"task-manager/internal/apperr"
	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

// defaultPageSize applies when a page is requested without a limit.
const defaultPageSize = 10

// maxPageSize caps the limit query parameter; larger values are clamped.
const maxPageSize = 100

type handler struct {
	auth        *service.AuthService
	tasks       *service.TaskService
	monitor     *service.HealthMonitor
	environment string
}

func (h *handler) healthCheck(c echo.Context) error {
	resp := healthResponse{
		Status:      "ok",
		Message:     "Server is healthy",
		Environment: h.environment,
		Database:    "down",
	}
	if h.monitor != nil {
		if h.monitor.Up() {
			resp.Database = "up"
		}
		if at := h.monitor.CheckedAt(); !at.IsZero() {
			resp.CheckedAt = &at
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *handler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	user, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newUserResponse(user, ""))
}

func (h *handler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	user, token, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newUserResponse(user, token))
}

func (h *handler) createTask(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	task, err := h.tasks.CreateTask(c.Request().Context(), owner, service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *handler) listTasks(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	tasks, err := h.tasks.ListTasks(c.Request().Context(), owner, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *handler) filterTasks(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	filter := model.TaskFilter{
		Status:   model.Status(filterValue(c, "status")),
		Priority: model.Priority(filterValue(c, "priority")),
		Title:    c.QueryParam("title"),
	}
	tasks, err := h.tasks.FilterTasks(c.Request().Context(), owner, filter, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *handler) getTask(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	task, err := h.tasks.GetTask(c.Request().Context(), owner, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *handler) updateTask(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	task, err := h.tasks.UpdateTask(c.Request().Context(), owner, c.Param("id"), req.toUpdate())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *handler) deleteTask(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := h.tasks.DeleteTask(c.Request().Context(), owner, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Task deleted", ID: id})
}

// filterValue treats the browser client's "all" as no filter.
func filterValue(c echo.Context, name string) string {
	v := c.QueryParam(name)
	if v == "all" {
		return ""
	}
	return v
}

func parsePage(c echo.Context) (repository.Page, error) {
	rawPage, rawLimit := c.QueryParam("page"), c.QueryParam("limit")
	if rawPage == "" && rawLimit == "" {
		return repository.Page{}, nil
	}

	page, limit := 1, defaultPageSize
	var err error
	if rawPage != "" {
		if page, err = strconv.Atoi(rawPage); err != nil || page < 1 {
			return repository.Page{}, apperr.New(apperr.BadRequest, "Invalid page")
		}
	}
	if rawLimit != "" {
		if limit, err = strconv.Atoi(rawLimit); err != nil || limit < 1 {
			return repository.Page{}, apperr.New(apperr.BadRequest, "Invalid limit")
		}
		limit = min(limit, maxPageSize)
	}
	if page-1 > math.MaxInt/limit {
		return repository.Page{}, apperr.New(apperr.BadRequest, "Invalid page")
	}
	return repository.Page{Offset: (page - 1) * limit, Limit: limit}, nil
}
