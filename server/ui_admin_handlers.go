package server

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-library-web/auth"
	"github.com/jrsteele09/go-library-web/backend"
	apperrors "github.com/jrsteele09/go-library-web/internal/errors"
	"github.com/jrsteele09/go-library-web/library"
	"golang.org/x/sync/errgroup"
)

// AdminPageData is the template model for the admin dashboard
type AdminPageData struct {
	Page
	Books      []library.Book
	Loans      []library.Loan
	Categories []library.Category
	Statuses   []library.LoanStatus
	EditingID  int64 // Book whose form failed validation, 0 for the create form
}

// bookFields are the book form fields, named as the backend names them
var bookFields = []string{"titulo", "autor", "descripcion", "isbn", "imagenUrl", "categoria", "copiasDisponibles"}

// AdminDashboardHandler renders books and every user's loans (GET /admin)
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := s.adminPage(r)
		if err != nil && s.sessionRejected(w, r, err) {
			return
		}
		render(w, tmpl, http.StatusOK, data)
	}
}

// AdminCreateBookHandler adds a book to the catalog (POST /admin/books)
func (s *Server) AdminCreateBookHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.saveBook(w, r, tmpl, 0)
	}
}

// AdminUpdateBookHandler replaces a catalog entry (POST /admin/books/{id})
func (s *Server) AdminUpdateBookHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin.html")
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			redirectWithError(w, r, RouteAdmin, MessageInvalidID)
			return
		}
		s.saveBook(w, r, tmpl, id)
	}
}

// AdminDeleteBookHandler removes a catalog entry (POST /admin/books/{id}/delete)
func (s *Server) AdminDeleteBookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			redirectWithError(w, r, RouteAdmin, MessageInvalidID)
			return
		}
		if err := s.libraryFor(r).DeleteBook(r.Context(), id); err != nil {
			if s.sessionRejected(w, r, err) {
				return
			}
			logHandlerError(r, err, "Failed to delete book")
			redirectWithError(w, r, RouteAdmin, backend.MessageOf(err))
			return
		}
		redirectWithNotice(w, r, RouteAdmin, MessageBookDeleted)
	}
}

// AdminLoanStatusHandler moves a loan to a new status (POST /admin/loans/{id}/status)
func (s *Server) AdminLoanStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			redirectWithError(w, r, RouteAdmin, MessageInvalidID)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		status := strings.TrimSpace(r.FormValue("estado"))
		err := auth.NewValidator().
			Required("estado", status).
			OneOf("estado", status, loanStatusValues()...).
			Err()
		if err != nil {
			redirectWithError(w, r, RouteAdmin, firstFieldMessage(err))
			return
		}

		if err := s.libraryFor(r).UpdateLoanStatus(r.Context(), id, library.LoanStatus(status)); err != nil {
			if s.sessionRejected(w, r, err) {
				return
			}
			logHandlerError(r, err, "Failed to update loan status")
			redirectWithError(w, r, RouteAdmin, backend.MessageOf(err))
			return
		}
		redirectWithNotice(w, r, RouteAdmin, MessageStatusUpdated)
	}
}

// saveBook validates the book form and creates (id 0) or updates the book. An invalid form
// re-renders the dashboard with the field errors next to the submitted values.
func (s *Server) saveBook(w http.ResponseWriter, r *http.Request, tmpl *template.Template, id int64) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	book, err := bookFromForm(r)
	if err != nil {
		data, loadErr := s.adminPage(r)
		if loadErr != nil && s.sessionRejected(w, r, loadErr) {
			return
		}
		data.Error = auth.MessageValidationFailed
		data.Notice = ""
		var validationErr *auth.ValidationError
		if apperrors.As(err, &validationErr) {
			data.Fields = validationErr.FieldMessages()
		}
		data.Form = make(map[string]string, len(bookFields))
		for _, field := range bookFields {
			data.Form[field] = r.FormValue(field)
		}
		data.EditingID = id
		render(w, tmpl, http.StatusUnprocessableEntity, data)
		return
	}

	svc := s.libraryFor(r)
	if id == 0 {
		err = svc.CreateBook(r.Context(), book)
	} else {
		err = svc.UpdateBook(r.Context(), id, book)
	}
	if err != nil {
		if s.sessionRejected(w, r, err) {
			return
		}
		logHandlerError(r, err, "Failed to save book")
		redirectWithError(w, r, RouteAdmin, backend.MessageOf(err))
		return
	}
	redirectWithNotice(w, r, RouteAdmin, MessageBookSaved)
}

// adminPage loads the books and loans shown on the dashboard concurrently. Whatever loaded
// is returned together with the first error, which is also set as the page error.
func (s *Server) adminPage(r *http.Request) (AdminPageData, error) {
	data := AdminPageData{
		Page:       s.newPage(r, "Administration"),
		Categories: library.Categories,
		Statuses:   library.LoanStatuses,
	}

	svc := s.libraryFor(r)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		books, err := svc.Books(gctx)
		data.Books = books
		return err
	})
	g.Go(func() error {
		loans, err := svc.AllLoans(gctx)
		data.Loans = loans
		return err
	})
	if err := g.Wait(); err != nil {
		logHandlerError(r, err, "Failed to load admin dashboard")
		data.Error = backend.MessageOf(err)
		return data, err
	}
	return data, nil
}

// bookFromForm validates and reads the book form
func bookFromForm(r *http.Request) (library.Book, error) {
	value := func(field string) string { return strings.TrimSpace(r.FormValue(field)) }

	err := auth.NewValidator().
		Required("titulo", value("titulo")).
		Required("autor", value("autor")).
		Required("isbn", value("isbn")).
		Required("categoria", value("categoria")).
		OneOf("categoria", value("categoria"), categoryValues()...).
		Required("copiasDisponibles", value("copiasDisponibles")).
		NonNegativeInt("copiasDisponibles", value("copiasDisponibles")).
		Err()
	if err != nil {
		return library.Book{}, err
	}

	copies, _ := strconv.Atoi(value("copiasDisponibles"))
	return library.Book{
		Title:           value("titulo"),
		Author:          value("autor"),
		Description:     value("descripcion"),
		ISBN:            value("isbn"),
		ImageURL:        value("imagenUrl"),
		Category:        library.Category(value("categoria")),
		AvailableCopies: copies,
	}, nil
}

func categoryValues() []string {
	values := make([]string, 0, len(library.Categories))
	for _, c := range library.Categories {
		values = append(values, string(c))
	}
	return values
}

func loanStatusValues() []string {
	values := make([]string, 0, len(library.LoanStatuses))
	for _, status := range library.LoanStatuses {
		values = append(values, string(status))
	}
	return values
}
