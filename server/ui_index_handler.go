package server

import (
	"net/http"

	"github.com/jrsteele09/go-library-web/library"
)

// CatalogPageData is the template model for the catalog
type CatalogPageData struct {
	Page
	Books      []library.Book
	Categories []library.Category
	Category   library.Category // Selected filter, empty for all books
}

// IndexHandler renders the catalog, optionally filtered by ?categoria= (GET /)
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := CatalogPageData{
			Page:       s.newPage(r, "Catalog"),
			Categories: library.Categories,
			Category:   selectedCategory(r.URL.Query().Get("categoria")),
		}

		svc := s.libraryFor(r)
		var books []library.Book
		var err error
		if data.Category != "" {
			books, err = svc.BooksByCategory(r.Context(), data.Category)
		} else {
			books, err = svc.Books(r.Context())
		}
		if err != nil {
			if s.sessionRejected(w, r, err) {
				return
			}
			logHandlerError(r, err, "Failed to load catalog")
			data.Error = MessageBooksUnavailable
		}
		data.Books = books

		render(w, tmpl, http.StatusOK, data)
	}
}

// selectedCategory ignores unknown categories so the full catalog is shown instead
func selectedCategory(value string) library.Category {
	for _, c := range library.Categories {
		if string(c) == value {
			return c
		}
	}
	return ""
}
