package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/granary-dev/granary/pkg/model"
	"github.com/granary-dev/granary/pkg/usecase/ingest"
	"github.com/labstack/echo/v4"
	"github.com/m-mizutani/goerr/v2"
)

type healthResponse struct {
	Status string `json:"status"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Results []*model.SearchResult `json:"results"`
}

type chatRequest struct {
	Message string               `json:"message"`
	History []*model.ChatMessage `json:"history"`
}

type listDocumentsResponse struct {
	Documents []*model.Document `json:"documents"`
}

type addDocumentRequest struct {
	Content  string         `json:"content"`
	Metadata model.Metadata `json:"metadata"`
}

type addDocumentResponse struct {
	ID      model.DocumentID `json:"id"`
	Message string           `json:"message"`
}

type bulkAddRequest struct {
	Documents []ingest.Item `json:"documents"`
}

type bulkAddResponse struct {
	Message    string `json:"message"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
}

// mapError converts a use case error to an HTTP status by its tag. The
// underlying error is logged by the handler, not exposed.
func mapError(err error) *echo.HTTPError {
	switch {
	case goerr.HasTag(err, model.ErrTagValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case goerr.HasTag(err, model.ErrTagEmbedding), goerr.HasTag(err, model.ErrTagGeneration):
		return echo.NewHTTPError(http.StatusBadGateway, "model backend unavailable")
	case goerr.HasTag(err, model.ErrTagStore):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "document store unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	results, err := s.search.Search(c.Request().Context(), req.Query, req.Limit)
	if err != nil {
		s.logger.Error("search failed", "error", err)
		return mapError(err)
	}

	if results == nil {
		results = []*model.SearchResult{}
	}
	return c.JSON(http.StatusOK, searchResponse{Results: results})
}

func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	for _, msg := range req.History {
		if err := msg.Role.Validate(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid history role: %s", msg.Role))
		}
	}

	resp, err := s.chat.Chat(c.Request().Context(), req.Message, req.History)
	if err != nil {
		s.logger.Error("chat failed", "error", err)
		return mapError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListDocuments(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	docs, err := s.repo.ListDocuments(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error("list documents failed", "error", err)
		return mapError(err)
	}

	if docs == nil {
		docs = []*model.Document{}
	}
	return c.JSON(http.StatusOK, listDocumentsResponse{Documents: docs})
}

func (s *Server) handleAddDocument(c echo.Context) error {
	var req addDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}

	id, err := s.ingest.Add(c.Request().Context(), req.Content, req.Metadata)
	if err != nil {
		s.logger.Error("add document failed", "error", err)
		return mapError(err)
	}

	return c.JSON(http.StatusCreated, addDocumentResponse{
		ID:      id,
		Message: "Document added successfully",
	})
}

func (s *Server) handleBulkAddDocuments(c echo.Context) error {
	var req bulkAddRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Documents == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "documents must be an array")
	}

	result := s.ingest.AddBulk(c.Request().Context(), req.Documents)

	return c.JSON(http.StatusCreated, bulkAddResponse{
		Message:    fmt.Sprintf("Added %d documents, %d failed", result.Successful, result.Failed),
		Successful: result.Successful,
		Failed:     result.Failed,
	})
}
