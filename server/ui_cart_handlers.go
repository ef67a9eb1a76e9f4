package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-library-web/auth"
	"github.com/jrsteele09/go-library-web/backend"
	apperrors "github.com/jrsteele09/go-library-web/internal/errors"
	"github.com/jrsteele09/go-library-web/library"
)

// CartPageData is the template model for the cart
type CartPageData struct {
	Page
	Cart library.Cart
}

// LoansPageData is the template model for the loan history
type LoansPageData struct {
	Page
	Loans []library.Loan
}

// CartHandler renders the cart of the logged in user (GET /cart)
func (s *Server) CartHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("cart.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := CartPageData{Page: s.newPage(r, "Cart")}

		cart, err := s.libraryFor(r).Cart(r.Context())
		if err != nil {
			if s.sessionRejected(w, r, err) {
				return
			}
			logHandlerError(r, err, "Failed to load cart")
			data.Error = backend.MessageOf(err)
		}
		data.Cart = cart

		render(w, tmpl, http.StatusOK, data)
	}
}

// AddToCartHandler adds a book to the cart (POST /cart/add)
func (s *Server) AddToCartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		back := catalogPath(r.FormValue("categoria"))

		bookID := strings.TrimSpace(r.FormValue("libroId"))
		quantity := strings.TrimSpace(r.FormValue("cantidad"))
		if quantity == "" {
			quantity = "1"
		}
		err := auth.NewValidator().
			Required("libroId", bookID).PositiveInt("libroId", bookID).
			PositiveInt("cantidad", quantity).
			Err()
		if err != nil {
			redirectWithError(w, r, back, firstFieldMessage(err))
			return
		}

		id, _ := strconv.ParseInt(bookID, 10, 64)
		qty, _ := strconv.Atoi(quantity)
		if err := s.libraryFor(r).AddToCart(r.Context(), id, qty); err != nil {
			if s.sessionRejected(w, r, err) {
				return
			}
			logHandlerError(r, err, "Failed to add to cart")
			redirectWithError(w, r, back, backend.MessageOf(err))
			return
		}
		redirectWithNotice(w, r, back, MessageAddedToCart)
	}
}

// RemoveFromCartHandler removes one cart item (POST /cart/remove/{id})
func (s *Server) RemoveFromCartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, ok := pathID(r, "id")
		if !ok {
			redirectWithError(w, r, RouteCart, MessageInvalidID)
			return
		}
		if err := s.libraryFor(r).RemoveFromCart(r.Context(), itemID); err != nil {
			if s.sessionRejected(w, r, err) {
				return
			}
			logHandlerError(r, err, "Failed to remove cart item")
			redirectWithError(w, r, RouteCart, backend.MessageOf(err))
			return
		}
		redirectWithNotice(w, r, RouteCart, MessageRemovedFromCart)
	}
}

// RequestLoanHandler turns the current cart into a loan request (POST /loans)
func (s *Server) RequestLoanHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc := s.libraryFor(r)
		cart, err := svc.Cart(r.Context())
		if err == nil {
			err = svc.RequestLoan(r.Context(), cart)
		}
		if err != nil {
			if s.sessionRejected(w, r, err) {
				return
			}
			if apperrors.Is(err, apperrors.ErrInvalidInput) {
				redirectWithError(w, r, RouteCart, MessageCartEmpty)
				return
			}
			logHandlerError(r, err, "Failed to request loan")
			redirectWithError(w, r, RouteCart, backend.MessageOf(err))
			return
		}
		redirectWithNotice(w, r, RouteLoans, MessageLoanRequested)
	}
}

// LoansHandler renders the loan history with pickup tickets (GET /loans)
func (s *Server) LoansHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("loans.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := LoansPageData{Page: s.newPage(r, "My loans")}

		loans, err := s.libraryFor(r).LoanHistory(r.Context())
		if err != nil {
			if s.sessionRejected(w, r, err) {
				return
			}
			logHandlerError(r, err, "Failed to load loan history")
			data.Error = backend.MessageOf(err)
		}
		data.Loans = loans

		render(w, tmpl, http.StatusOK, data)
	}
}

// catalogPath returns to the catalog, keeping a known category filter
func catalogPath(category string) string {
	if c := selectedCategory(category); c != "" {
		return withQuery(RouteIndex, "categoria", string(c))
	}
	return RouteIndex
}

// firstFieldMessage flattens a validation error into one flash message
func firstFieldMessage(err error) string {
	var validationErr *auth.ValidationError
	if apperrors.As(err, &validationErr) && len(validationErr.Fields) > 0 {
		return validationErr.Fields[0].Field + ": " + validationErr.Fields[0].Message
	}
	return err.Error()
}
