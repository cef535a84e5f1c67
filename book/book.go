// Package book holds the catalogue records shared by the store, the service and the views.
package book

import (
	"time"
)

// DateLayout is the calendar date format used in forms and on detail pages.
const DateLayout = "2006-01-02"

// CatalogPrefix is the URL prefix every record lives under.
const CatalogPrefix = "/catalog"

type Author struct {
	ID          string     `db:"id" json:"id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	FamilyName  string     `db:"family_name" json:"family_name"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `db:"date_of_death" json:"date_of_death,omitempty"`
}

// Name returns "family_name, first_name", or an empty string when either part is missing.
func (a Author) Name() string {
	if a.FirstName == "" || a.FamilyName == "" {
		return ""
	}
	return a.FamilyName + ", " + a.FirstName
}

// Lifespan renders the birth and death dates as "birth - death".
// A missing date leaves its side of the range blank.
func (a Author) Lifespan() string {
	return formatDate(a.DateOfBirth) + " - " + formatDate(a.DateOfDeath)
}

func (a Author) DateOfBirthFormatted() string { return formatDate(a.DateOfBirth) }
func (a Author) DateOfDeathFormatted() string { return formatDate(a.DateOfDeath) }

func (a Author) URL() string {
	return CatalogPrefix + "/author/" + a.ID
}

// Book is a title in the catalogue. Author and Genres are only set after
// reference resolution; AuthorID and GenreIDs are what is stored.
type Book struct {
	ID       string   `db:"id" json:"id"`
	Title    string   `db:"title" json:"title"`
	Summary  string   `db:"summary" json:"summary"`
	ISBN     string   `db:"isbn" json:"isbn"`
	AuthorID string   `db:"author_id" json:"author_id"`
	GenreIDs []string `db:"-" json:"genre_ids"`

	Author *Author `db:"-" json:"author,omitempty"`
	Genres []Genre `db:"-" json:"genres,omitempty"`
}

func (b Book) URL() string {
	return CatalogPrefix + "/book/" + b.ID
}

type Genre struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

func (g Genre) URL() string {
	return CatalogPrefix + "/genre/" + g.ID
}

// BookInstance is a physical copy of a Book.
type BookInstance struct {
	ID      string     `db:"id" json:"id"`
	BookID  string     `db:"book_id" json:"book_id"`
	Imprint string     `db:"imprint" json:"imprint"`
	Status  Status     `db:"status" json:"status"`
	DueBack *time.Time `db:"due_back" json:"due_back,omitempty"`

	Book *Book `db:"-" json:"book,omitempty"`
}

func (bi BookInstance) URL() string {
	return CatalogPrefix + "/bookinstance/" + bi.ID
}

// DueBackFormatted is empty when no due date is set.
func (bi BookInstance) DueBackFormatted() string {
	return formatDate(bi.DueBack)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
