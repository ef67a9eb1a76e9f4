package library_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-library-web/backend"
	apperrors "github.com/jrsteele09/go-library-web/internal/errors"
	"github.com/jrsteele09/go-library-web/library"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type call struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

type fakeBackend struct {
	mu    sync.Mutex
	mux   *http.ServeMux
	calls []call
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, call{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: string(raw)})
	f.mu.Unlock()
	f.mux.ServeHTTP(w, r)
}

func (f *fakeBackend) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func setup(t *testing.T, routes map[string]http.HandlerFunc) (*library.Service, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{mux: http.NewServeMux()}
	for pattern, h := range routes {
		fb.mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	svc := library.NewService(backend.NewClient(srv.URL)).WithToken(&oauth2.Token{AccessToken: "T", TokenType: "Bearer"})
	return svc, fb
}

func jsonReply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

const booksJSON = `[
	{"id":1,"titulo":"Cien años de soledad","autor":"García Márquez","categoria":"Ficción","copiasDisponibles":3},
	{"id":2,"titulo":"Cosmos","autor":"Sagan","categoria":"Ciencia","copiasDisponibles":0}
]`

func TestBooks(t *testing.T) {
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		svc, fb := setup(t, map[string]http.HandlerFunc{"GET /api/libros": jsonReply(booksJSON)})
		books, err := svc.Books(ctx)
		require.NoError(t, err)
		require.Len(t, books, 2)
		require.Equal(t, "Cien años de soledad", books[0].Title)
		require.Equal(t, library.CategoryFiction, books[0].Category)
		require.True(t, books[0].Available())
		require.False(t, books[1].Available())
		require.Equal(t, "Bearer T", fb.last().Auth)
	})

	t.Run("by category", func(t *testing.T) {
		svc, _ := setup(t, map[string]http.HandlerFunc{"GET /api/libros": jsonReply(booksJSON)})
		books, err := svc.BooksByCategory(ctx, library.CategoryScience)
		require.NoError(t, err)
		require.Len(t, books, 1)
		require.Equal(t, int64(2), books[0].ID)

		books, err = svc.BooksByCategory(ctx, "")
		require.NoError(t, err)
		require.Len(t, books, 2)
	})

	t.Run("non array shapes are rejected", func(t *testing.T) {
		for _, body := range []string{`{"data":[]}`, `{"content":[]}`, `null`, `"x"`} {
			svc, _ := setup(t, map[string]http.HandlerFunc{"GET /api/libros": jsonReply(body)})
			_, err := svc.Books(ctx)
			require.ErrorIs(t, err, apperrors.ErrUnsupportedPayload, body)
		}
	})

	t.Run("create update delete", func(t *testing.T) {
		svc, fb := setup(t, map[string]http.HandlerFunc{
			"POST /api/libros":        ok,
			"PUT /api/libros/{id}":    ok,
			"DELETE /api/libros/{id}": ok,
		})
		book := library.Book{ID: 99, Title: "Dune", Author: "Herbert", ISBN: "978", Category: library.CategoryFiction, AvailableCopies: 2}

		require.NoError(t, svc.CreateBook(ctx, book))
		require.JSONEq(t, `{"titulo":"Dune","autor":"Herbert","descripcion":"","isbn":"978","imagenUrl":"","categoria":"Ficción","copiasDisponibles":2}`, fb.last().Body)

		require.NoError(t, svc.UpdateBook(ctx, 5, book))
		require.Equal(t, "/api/libros/5", fb.last().Path)
		require.Contains(t, fb.last().Body, `"id":5`)

		require.NoError(t, svc.DeleteBook(ctx, 5))
		require.Equal(t, http.MethodDelete, fb.last().Method)
		require.Empty(t, fb.last().Body)
	})

	t.Run("backend error is a request error", func(t *testing.T) {
		svc, _ := setup(t, map[string]http.HandlerFunc{
			"DELETE /api/libros/{id}": func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"message":"El libro tiene préstamos activos"}`))
			},
		})
		err := svc.DeleteBook(ctx, 1)
		require.Equal(t, http.StatusConflict, backend.StatusCodeOf(err))
		require.Equal(t, "El libro tiene préstamos activos", backend.MessageOf(err))
	})
}

func TestCart(t *testing.T) {
	ctx := context.Background()

	t.Run("get", func(t *testing.T) {
		svc, _ := setup(t, map[string]http.HandlerFunc{
			"GET /api/cart/get": jsonReply(`{"items":[{"id":10,"libro":{"id":1,"titulo":"Cosmos"},"cantidad":2},{"id":11,"libro":{"id":2},"cantidad":1}]}`),
		})
		cart, err := svc.Cart(ctx)
		require.NoError(t, err)
		require.Len(t, cart.Items, 2)
		require.Equal(t, "Cosmos", cart.Items[0].Book.Title)
		require.Equal(t, 3, cart.TotalBooks())
	})

	t.Run("empty reply is an empty cart", func(t *testing.T) {
		svc, _ := setup(t, map[string]http.HandlerFunc{"GET /api/cart/get": ok})
		cart, err := svc.Cart(ctx)
		require.NoError(t, err)
		require.Empty(t, cart.Items)
	})

	t.Run("add and remove", func(t *testing.T) {
		svc, fb := setup(t, map[string]http.HandlerFunc{
			"POST /api/cart/agregar":          ok,
			"DELETE /api/cart/eliminar/{id}": ok,
		})
		require.NoError(t, svc.AddToCart(ctx, 4, 2))
		require.JSONEq(t, `{"libroId":4,"cantidad":2}`, fb.last().Body)

		require.ErrorIs(t, svc.AddToCart(ctx, 4, 0), apperrors.ErrInvalidInput)

		require.NoError(t, svc.RemoveFromCart(ctx, 10))
		require.Equal(t, "/api/cart/eliminar/10", fb.last().Path)
	})

	t.Run("request loan", func(t *testing.T) {
		svc, fb := setup(t, map[string]http.HandlerFunc{"POST /api/prestamos": ok})
		cart := library.Cart{Items: []library.CartItem{{ID: 10, Book: library.Book{ID: 1}, Quantity: 2}}}

		require.NoError(t, svc.RequestLoan(ctx, cart))
		var sent library.Cart
		require.NoError(t, json.Unmarshal([]byte(fb.last().Body), &sent))
		require.Equal(t, cart.Items[0].Quantity, sent.Items[0].Quantity)

		require.ErrorIs(t, svc.RequestLoan(ctx, library.Cart{}), apperrors.ErrInvalidInput)
	})
}

const loansJSON = `[
	{"id":1,"fechaSolicitud":"2025-03-01T10:30:00","usuario":{"nombre":"Ana","usuario":"ana"},"estado":"pendiente",
	 "detallesPrestamo":[{"id":1,"libro":{"id":1},"cantidad":2},{"id":2,"libro":{"id":2}}]},
	{"id":2,"fechaSolicitud":"2025-03-02","usuario":{"nombre":"Luis","usuario":"luis"},"estado":"listo","detallesPrestamo":[]},
	{"id":3,"fechaSolicitud":"ayer","usuario":{"nombre":"Eva","usuario":"eva"},"estado":"retirado","detallesPrestamo":[]}
]`

func TestLoans(t *testing.T) {
	ctx := context.Background()

	ticketHandler := func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "1":
			jsonReply(`{"codigo":"TK-001"}`)(w, r)
		case "2":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(" TK-002 \n"))
		default:
			http.NotFound(w, r)
		}
	}

	t.Run("history with tickets", func(t *testing.T) {
		svc, _ := setup(t, map[string]http.HandlerFunc{
			"GET /api/prestamos/historial":   jsonReply(loansJSON),
			"GET /api/prestamos/{id}/ticket": ticketHandler,
		})
		loans, err := svc.LoanHistory(ctx)
		require.NoError(t, err)
		require.Len(t, loans, 3)

		require.Equal(t, "TK-001", loans[0].Ticket.Code)
		require.Equal(t, "TK-002", loans[1].Ticket.Code)
		require.Nil(t, loans[2].Ticket)

		require.Equal(t, 3, loans[0].TotalBooks())
		require.Equal(t, "01/03/2025", loans[0].RequestedDate())
		require.Equal(t, "02/03/2025", loans[1].RequestedDate())
		require.Equal(t, "ayer", loans[2].RequestedDate())
		require.Equal(t, library.LoanPending, loans[0].Status)
		require.Equal(t, "Ana", loans[0].User.Name)
	})

	t.Run("all loans fan out one ticket request per loan", func(t *testing.T) {
		var ticketCalls atomic.Int32
		svc, _ := setup(t, map[string]http.HandlerFunc{
			"GET /api/prestamos/all": jsonReply(loansJSON),
			"GET /api/prestamos/{id}/ticket": func(w http.ResponseWriter, r *http.Request) {
				ticketCalls.Add(1)
				ticketHandler(w, r)
			},
		})
		loans, err := svc.AllLoans(ctx)
		require.NoError(t, err)
		require.Len(t, loans, 3)
		require.Equal(t, int32(3), ticketCalls.Load())
	})

	t.Run("ticket failure fails the page", func(t *testing.T) {
		svc, _ := setup(t, map[string]http.HandlerFunc{
			"GET /api/prestamos/historial": jsonReply(loansJSON),
			"GET /api/prestamos/{id}/ticket": func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		})
		_, err := svc.LoanHistory(ctx)
		require.Error(t, err)
		require.Equal(t, http.StatusInternalServerError, backend.StatusCodeOf(err))
	})

	t.Run("empty history", func(t *testing.T) {
		svc, _ := setup(t, map[string]http.HandlerFunc{"GET /api/prestamos/historial": jsonReply(`[]`)})
		loans, err := svc.LoanHistory(ctx)
		require.NoError(t, err)
		require.Empty(t, loans)
	})

	t.Run("update status", func(t *testing.T) {
		svc, fb := setup(t, map[string]http.HandlerFunc{"PUT /api/prestamos/{id}/estado": ok})
		require.NoError(t, svc.UpdateLoanStatus(ctx, 7, library.LoanReady))
		require.Equal(t, "/api/prestamos/7/estado", fb.last().Path)
		require.JSONEq(t, `{"estado":"listo"}`, fb.last().Body)

		require.ErrorIs(t, svc.UpdateLoanStatus(ctx, 7, "perdido"), apperrors.ErrInvalidInput)
	})
}

func TestTicket_Shapes(t *testing.T) {
	ctx := context.Background()

	svc, _ := setup(t, map[string]http.HandlerFunc{
		"GET /api/prestamos/1/ticket": jsonReply(`{"other":"x"}`),
		"GET /api/prestamos/2/ticket": ok,
	})
	_, err := svc.Ticket(ctx, 1)
	require.ErrorIs(t, err, apperrors.ErrUnsupportedPayload)

	_, err = svc.Ticket(ctx, 2)
	require.ErrorIs(t, err, apperrors.ErrUnsupportedPayload)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	svc, fb := setup(t, map[string]http.HandlerFunc{
		"GET /api/usuario/getUsuario/{id}": jsonReply(`{"nombre":"Ana","usuario":"ana","email":"ana@test.com","rol":"ADMIN"}`),
	})

	profile, err := svc.Profile(ctx, "7")
	require.NoError(t, err)
	require.Equal(t, library.Profile{Name: "Ana", Username: "ana", Email: "ana@test.com", Role: "ADMIN"}, profile)
	require.Equal(t, "/api/usuario/getUsuario/7", fb.last().Path)

	_, err = svc.Profile(ctx, "")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestLabels(t *testing.T) {
	require.Equal(t, "No Ficción", library.CategoryNonFiction.Label())
	require.Equal(t, "Ciencia", library.CategoryScience.Label())
	require.Equal(t, "Pendiente", library.LoanPending.Label())
	require.True(t, library.LoanReturned.Valid())
	require.False(t, library.LoanStatus("perdido").Valid())
}
