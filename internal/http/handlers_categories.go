package http

import (
	"errors"
	"net/http"
	"strings"

	"enriquecer/internal/core"
	"enriquecer/internal/storage"
)

// handleListCategories lists every category, or only those of ?kind=.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var (
		cats []core.Category
		err  error
	)
	if v := strings.TrimSpace(r.URL.Query().Get("kind")); v != "" {
		kind := core.Kind(strings.ToLower(v))
		if !kind.IsValid() {
			BadRequestError(core.ErrInvalidKind.Error()).Write(w)
			return
		}
		cats, err = s.backend.CategoriesFor(r.Context(), kind)
	} else {
		cats, err = s.backend.Categories(r.Context())
	}
	if err != nil {
		s.internalError(w, r, "List categories failed", err)
		return
	}
	NewResponse().JSON(map[string][]core.Category{"categories": cats}).Write(w)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	kind := core.Kind(strings.ToLower(parser.Get("kind")))
	c, err := s.backend.AddCategory(r.Context(), parser.Get("name"), kind)
	if err != nil {
		s.categoryError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(c).Write(w)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	c, err := s.backend.RenameCategory(r.Context(), r.PathValue("id"), parser.Get("name"))
	if err != nil {
		s.categoryError(w, r, err)
		return
	}
	NewResponse().JSON(c).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		s.categoryError(w, r, err)
		return
	}
	NoContent().Write(w)
}

func (s *Server) categoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrCategoryNotFound):
		NotFoundError(err.Error()).Write(w)
	case errors.Is(err, storage.ErrCategoryExists):
		ConflictError(err.Error()).Write(w)
	case core.IsValidation(err):
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		s.internalError(w, r, "Category operation failed", err)
	}
}
