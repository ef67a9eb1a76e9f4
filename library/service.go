package library

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-library-web/backend"
	apperrors "github.com/jrsteele09/go-library-web/internal/errors"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// Backend endpoints for the library collaborators
const (
	booksPath       = "/api/libros"
	cartPath        = "/api/cart/get"
	cartAddPath     = "/api/cart/agregar"
	cartRemovePath  = "/api/cart/eliminar/%d"
	loansPath       = "/api/prestamos"
	loanHistoryPath = "/api/prestamos/historial"
	allLoansPath    = "/api/prestamos/all"
	loanTicketPath  = "/api/prestamos/%d/ticket"
	loanStatusPath  = "/api/prestamos/%d/estado"
	profilePath     = "/api/usuario/getUsuario/%s"
)

// maxTicketFetches bounds the concurrent ticket requests of one page
const maxTicketFetches = 8

type addToCartRequest struct {
	BookID   int64 `json:"libroId"`
	Quantity int   `json:"cantidad"`
}

type loanStatusRequest struct {
	Status LoanStatus `json:"estado"`
}

// Service calls the catalog, cart, loan and profile endpoints
type Service struct {
	client *backend.Client
}

// NewService creates a library service on top of the backend client
func NewService(client *backend.Client) *Service {
	return &Service{client: client}
}

// WithToken returns a service whose calls carry the session's bearer token
func (s *Service) WithToken(token *oauth2.Token) *Service {
	return &Service{client: s.client.WithToken(token)}
}

// Books lists the whole catalog
func (s *Service) Books(ctx context.Context) ([]Book, error) {
	var books []Book
	if err := s.getList(ctx, booksPath, &books); err != nil {
		return nil, apperrors.Wrapf(err, "[Books]")
	}
	return books, nil
}

// BooksByCategory lists the catalog filtered to one category. An empty category lists everything.
func (s *Service) BooksByCategory(ctx context.Context, category Category) ([]Book, error) {
	books, err := s.Books(ctx)
	if err != nil || category == "" {
		return books, err
	}
	filtered := make([]Book, 0, len(books))
	for _, b := range books {
		if b.Category == category {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// CreateBook adds a book to the catalog
func (s *Service) CreateBook(ctx context.Context, book Book) error {
	book.ID = 0
	return s.send(ctx, http.MethodPost, booksPath, book)
}

// UpdateBook replaces the book with the given id
func (s *Service) UpdateBook(ctx context.Context, id int64, book Book) error {
	book.ID = id
	return s.send(ctx, http.MethodPut, fmt.Sprintf("%s/%d", booksPath, id), book)
}

// DeleteBook removes a book from the catalog
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	return s.send(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", booksPath, id), nil)
}

// Cart returns the current user's cart. An empty reply is an empty cart.
func (s *Service) Cart(ctx context.Context) (Cart, error) {
	resp, err := s.client.Do(ctx, cartPath, backend.Options{})
	if err != nil {
		return Cart{}, err
	}
	var cart Cart
	if resp.Kind == backend.KindEmpty {
		return cart, nil
	}
	if err := resp.Decode(&cart); err != nil {
		return Cart{}, apperrors.Wrapf(err, "[Cart]")
	}
	return cart, nil
}

// AddToCart puts quantity copies of a book in the cart
func (s *Service) AddToCart(ctx context.Context, bookID int64, quantity int) error {
	if quantity < 1 {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "[AddToCart] quantity must be at least 1, got %d", quantity)
	}
	return s.send(ctx, http.MethodPost, cartAddPath, addToCartRequest{BookID: bookID, Quantity: quantity})
}

// RemoveFromCart deletes one cart line
func (s *Service) RemoveFromCart(ctx context.Context, itemID int64) error {
	return s.send(ctx, http.MethodDelete, fmt.Sprintf(cartRemovePath, itemID), nil)
}

// RequestLoan turns the cart into a loan request
func (s *Service) RequestLoan(ctx context.Context, cart Cart) error {
	if len(cart.Items) == 0 {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "[RequestLoan] cart is empty")
	}
	return s.send(ctx, http.MethodPost, loansPath, cart)
}

// LoanHistory lists the current user's loans with their tickets
func (s *Service) LoanHistory(ctx context.Context) ([]Loan, error) {
	return s.loansWithTickets(ctx, loanHistoryPath)
}

// AllLoans lists every user's loans with their tickets
func (s *Service) AllLoans(ctx context.Context) ([]Loan, error) {
	return s.loansWithTickets(ctx, allLoansPath)
}

// Ticket returns the pick up ticket of a loan. The backend may answer with a JSON object
// or with the bare code as text.
func (s *Service) Ticket(ctx context.Context, loanID int64) (Ticket, error) {
	resp, err := s.client.Do(ctx, fmt.Sprintf(loanTicketPath, loanID), backend.Options{})
	if err != nil {
		return Ticket{}, err
	}

	switch resp.Kind {
	case backend.KindJSON:
		var ticket Ticket
		if err := resp.Decode(&ticket); err != nil {
			return Ticket{}, apperrors.Wrapf(err, "[Ticket]")
		}
		if ticket.Code == "" {
			return Ticket{}, apperrors.Wrapf(apperrors.ErrUnsupportedPayload, "[Ticket] missing codigo")
		}
		return ticket, nil
	case backend.KindText:
		return Ticket{Code: strings.TrimSpace(resp.Text)}, nil
	default:
		return Ticket{}, apperrors.Wrapf(apperrors.ErrUnsupportedPayload, "[Ticket] empty reply")
	}
}

// UpdateLoanStatus moves a loan to a new status
func (s *Service) UpdateLoanStatus(ctx context.Context, loanID int64, status LoanStatus) error {
	if !status.Valid() {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "[UpdateLoanStatus] unknown status %q", status)
	}
	return s.send(ctx, http.MethodPut, fmt.Sprintf(loanStatusPath, loanID), loanStatusRequest{Status: status})
}

// Profile returns the account record of a user
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, apperrors.Wrapf(apperrors.ErrInvalidInput, "[Profile] user id required")
	}
	resp, err := s.client.Do(ctx, fmt.Sprintf(profilePath, url.PathEscape(userID)), backend.Options{})
	if err != nil {
		return Profile{}, err
	}
	var profile Profile
	if err := resp.Decode(&profile); err != nil {
		return Profile{}, apperrors.Wrapf(err, "[Profile]")
	}
	return profile, nil
}

// loansWithTickets fetches a loan list, then every loan's ticket concurrently.
// A loan whose ticket is not issued yet (404) keeps a nil Ticket; any other failure fails the call.
func (s *Service) loansWithTickets(ctx context.Context, path string) ([]Loan, error) {
	var loans []Loan
	if err := s.getList(ctx, path, &loans); err != nil {
		return nil, apperrors.Wrapf(err, "[loansWithTickets] %s", path)
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxTicketFetches)
	for i := range loans {
		g.Go(func() error {
			ticket, err := s.Ticket(groupCtx, loans[i].ID)
			if err != nil {
				if backend.StatusCodeOf(err) == http.StatusNotFound {
					return nil
				}
				return apperrors.Wrapf(err, "[loansWithTickets] ticket for loan %d", loans[i].ID)
			}
			loans[i].Ticket = &ticket
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return loans, nil
}

// getList decodes a list endpoint. Only a JSON array is accepted.
func (s *Service) getList(ctx context.Context, path string, out any) error {
	resp, err := s.client.Do(ctx, path, backend.Options{})
	if err != nil {
		return err
	}
	if resp.Kind != backend.KindJSON || !bytes.HasPrefix(bytes.TrimSpace(resp.JSON), []byte("[")) {
		return apperrors.Wrapf(apperrors.ErrUnsupportedPayload, "expected a JSON array from %s", path)
	}
	return resp.Decode(out)
}

func (s *Service) send(ctx context.Context, method, path string, payload any) error {
	opts := backend.Options{Method: method}
	if payload != nil {
		body, err := backend.JSONBody(payload)
		if err != nil {
			return apperrors.Wrapf(err, "[send] encode %s", path)
		}
		opts.Body = body
	}
	_, err := s.client.Do(ctx, path, opts)
	return err
}
