package server

import (
	"io"
	"strconv"
	"strings"

	"pressroom/internal/models"
	"pressroom/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetArticles handles GET /api/articles
// Supports page, page_size, search, category_id, and user_id query params.
func (s *Server) GetArticles(c *fiber.Ctx) error {
	in, err := s.parsePageQuery(c)
	if err != nil {
		return nil
	}

	page, err := s.articleService.ListArticles(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetMyArticles handles GET /api/articles/my
func (s *Server) GetMyArticles(c *fiber.Ctx) error {
	in, err := s.parsePageQuery(c)
	if err != nil {
		return nil
	}
	in.UserID = currentUserID(c)

	page, err := s.articleService.ListArticles(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetArticle handles GET /api/articles/:id
func (s *Server) GetArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	article, err := s.articleService.GetArticle(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(article)
}

// CreateArticle handles POST /api/articles
// Accepts multipart form data with title, content, category_id, and an
// optional image file; falls back to a JSON body without image.
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var in service.CreateArticleInput
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		categoryID, ok := parseFormUint(c.FormValue("category_id"))
		if !ok {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("category_id must be a positive integer"))
		}
		upload, err := readImageFile(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		in = service.CreateArticleInput{
			UserID:     userID,
			Title:      c.FormValue("title"),
			Content:    c.FormValue("content"),
			CategoryID: categoryID,
			Image:      upload,
		}
	} else {
		var req struct {
			Title      string `json:"title"`
			Content    string `json:"content"`
			CategoryID uint   `json:"category_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in = service.CreateArticleInput{
			UserID:     userID,
			Title:      req.Title,
			Content:    req.Content,
			CategoryID: req.CategoryID,
		}
	}

	article, err := s.articleService.CreateArticle(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

// UpdateArticle handles PUT /api/articles/:id
// Absent fields are left unchanged.
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in := service.UpdateArticleInput{
		UserID:    currentUserID(c),
		ArticleID: id,
	}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if v := c.FormValue("title"); v != "" {
			in.Title = &v
		}
		if v := c.FormValue("content"); v != "" {
			in.Content = &v
		}
		if v := c.FormValue("category_id"); v != "" {
			categoryID, ok := parseFormUint(v)
			if !ok {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("category_id must be a positive integer"))
			}
			in.CategoryID = &categoryID
		}
		upload, fileErr := readImageFile(c)
		if fileErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(fileErr.Error()))
		}
		in.Image = upload
	} else {
		var req struct {
			Title      *string `json:"title"`
			Content    *string `json:"content"`
			CategoryID *uint   `json:"category_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.Title = req.Title
		in.Content = req.Content
		in.CategoryID = req.CategoryID
	}

	article, err := s.articleService.UpdateArticle(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(article)
}

// DeleteArticle handles DELETE /api/articles/:id
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.articleService.DeleteArticle(c.Context(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Article deleted successfully"})
}

// readImageFile extracts the optional "image" multipart file. A missing
// file is not an error; an unreadable one is.
func readImageFile(c *fiber.Ctx) (*service.ImageUpload, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}

	src, err := file.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Unable to read uploaded file")
	}

	return &service.ImageUpload{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func parseFormUint(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
