package library

import (
	"strings"
	"time"
)

// Category of a book in the catalog
type Category string

const (
	CategoryFiction    Category = "Ficción"
	CategoryNonFiction Category = "NoFicción"
	CategoryScience    Category = "Ciencia"
	CategoryHistory    Category = "Historia"
	CategoryBiography  Category = "Biografía"
)

// Categories lists every category in display order
var Categories = []Category{CategoryFiction, CategoryNonFiction, CategoryScience, CategoryHistory, CategoryBiography}

// Label is the human readable category name
func (c Category) Label() string {
	if c == CategoryNonFiction {
		return "No Ficción"
	}
	return string(c)
}

// Book is a catalog entry
type Book struct {
	ID              int64    `json:"id,omitempty"`
	Title           string   `json:"titulo"`
	Author          string   `json:"autor"`
	Description     string   `json:"descripcion"`
	ISBN            string   `json:"isbn"`
	ImageURL        string   `json:"imagenUrl"`
	Category        Category `json:"categoria"`
	AvailableCopies int      `json:"copiasDisponibles"`
}

// Available reports whether at least one copy can be lent
func (b Book) Available() bool {
	return b.AvailableCopies > 0
}

// CartItem is a book and the number of copies the user wants to borrow
type CartItem struct {
	ID       int64 `json:"id"`
	Book     Book  `json:"libro"`
	Quantity int   `json:"cantidad"`
}

// Cart holds the books pending a loan request
type Cart struct {
	Items []CartItem `json:"items"`
}

// TotalBooks counts every copy in the cart
func (c Cart) TotalBooks() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// LoanStatus is the lifecycle position of a loan
type LoanStatus string

const (
	LoanPending  LoanStatus = "pendiente"
	LoanReady    LoanStatus = "listo"
	LoanPickedUp LoanStatus = "retirado"
	LoanReturned LoanStatus = "devuelto"
)

// LoanStatuses lists every status in lifecycle order
var LoanStatuses = []LoanStatus{LoanPending, LoanReady, LoanPickedUp, LoanReturned}

// Label is the capitalised status name
func (s LoanStatus) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Valid reports whether s is a known status
func (s LoanStatus) Valid() bool {
	for _, known := range LoanStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// LoanUser identifies who requested a loan
type LoanUser struct {
	Name     string `json:"nombre"`
	Username string `json:"usuario"`
}

// LoanDetail is one book line of a loan
type LoanDetail struct {
	ID       int64 `json:"id"`
	Book     Book  `json:"libro"`
	Quantity int   `json:"cantidad"`
}

// Loan is a request to borrow the books of a cart
type Loan struct {
	ID          int64        `json:"id"`
	RequestedAt string       `json:"fechaSolicitud"`
	User        LoanUser     `json:"usuario"`
	Status      LoanStatus   `json:"estado"`
	Details     []LoanDetail `json:"detallesPrestamo"`
	Ticket      *Ticket      `json:"-"` // Filled by LoanHistory and AllLoans, nil until issued
}

// TotalBooks counts the copies in the loan. A line without a quantity counts as one copy.
func (l Loan) TotalBooks() int {
	total := 0
	for _, d := range l.Details {
		if d.Quantity > 0 {
			total += d.Quantity
		} else {
			total++
		}
	}
	return total
}

var requestedAtLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02"}

// RequestedDate formats the request date as dd/mm/yyyy, or returns the raw value if unparsable
func (l Loan) RequestedDate() string {
	for _, layout := range requestedAtLayouts {
		if t, err := time.Parse(layout, l.RequestedAt); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return l.RequestedAt
}

// Ticket is the pick up code issued for a loan
type Ticket struct {
	Code string `json:"codigo"`
}

// Profile is the account record shown on the profile page
type Profile struct {
	Name     string `json:"nombre"`
	LastName string `json:"apellido,omitempty"`
	Username string `json:"usuario"`
	Email    string `json:"email"`
	Phone    string `json:"telefono,omitempty"`
	Role     string `json:"rol"`
}
