package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"photofolio_api/internal/services"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

func (h *PostHandler) List(c echo.Context) error {
	posts, err := h.posts.FindAll(c.Request().Context(), c.QueryParam("locale"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetBySlug(c echo.Context) error {
	locale := c.QueryParam("locale")
	if locale == "" {
		return services.NewValidationError("locale query parameter is required")
	}
	post, err := h.posts.FindBySlug(c.Request().Context(), c.Param("slug"), locale)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// GetRelated finds the translation of a story in another locale.
func (h *PostHandler) GetRelated(c echo.Context) error {
	relatedSlug := c.QueryParam("relatedSlug")
	locale := c.QueryParam("locale")
	if relatedSlug == "" || locale == "" {
		return services.NewValidationError("relatedSlug and locale query parameters are required")
	}
	post, err := h.posts.FindByRelatedSlug(c.Request().Context(), relatedSlug, locale)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Create(c echo.Context) error {
	var input services.PostInput
	if err := c.Bind(&input); err != nil {
		return services.NewValidationError("invalid JSON payload")
	}
	post, err := h.posts.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Update(c echo.Context) error {
	var input services.PostInput
	if err := c.Bind(&input); err != nil {
		return services.NewValidationError("invalid JSON payload")
	}
	post, err := h.posts.Update(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c echo.Context) error {
	if err := h.posts.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
