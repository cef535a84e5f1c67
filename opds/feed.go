package opds

import (
	"encoding/xml"
	"fmt"
	"time"

	"golang.org/x/net/html"

	"github.com/htol/locallibrary/book"
)

// FeedPath is where the catalogue feed is served.
const FeedPath = book.CatalogPrefix + "/opds"

// NewCatalogFeed creates an empty acquisition feed. baseURL is prepended to
// every link and may be empty for relative links.
func NewCatalogFeed(baseURL string, updated time.Time) *Feed {
	return &Feed{
		Xmlns:     NamespaceAtom,
		XmlnsDc:   NamespaceDC,
		XmlnsOpds: NamespaceOpds,
		ID:        "urn:locallibrary:catalog",
		Title:     "Local Library",
		Updated:   updated.UTC(),
		Author: &Author{
			Name: "LocalLibrary",
			URI:  baseURL + book.CatalogPrefix,
		},
		Links: []Link{
			{Rel: RelSelf, Href: baseURL + FeedPath, Type: TypeAcquisition},
			{Rel: RelStart, Href: baseURL + FeedPath, Type: TypeAcquisition},
			{Rel: RelAlternate, Href: baseURL + book.CatalogPrefix + "/books", Type: TypeHTML, Title: "Book List"},
		},
		Entries: []Entry{},
	}
}

// AddBook appends an entry for b. The author and genres are written when
// they have been resolved on b.
func (f *Feed) AddBook(b book.Book, baseURL string) {
	entry := Entry{
		ID:      "urn:uuid:" + b.ID,
		Title:   text(b.Title),
		Updated: f.Updated,
		Summary: text(b.Summary),
		Links: []Link{
			{Rel: RelAlternate, Href: baseURL + b.URL(), Type: TypeHTML},
		},
	}

	if b.ISBN != "" {
		entry.Identifier = "urn:isbn:" + text(b.ISBN)
	}

	if b.Author != nil {
		entry.Authors = append(entry.Authors, Author{
			Name: authorName(*b.Author),
			URI:  baseURL + b.Author.URL(),
		})
		entry.Links = append(entry.Links, Link{
			Rel:   RelRelated,
			Href:  baseURL + b.Author.URL(),
			Type:  TypeHTML,
			Title: authorName(*b.Author),
		})
	}

	for _, g := range b.Genres {
		entry.Categories = append(entry.Categories, Category{
			Scheme: GenreScheme,
			Term:   g.ID,
			Label:  text(g.Name),
		})
	}

	f.Entries = append(f.Entries, entry)
}

// Marshal encodes the feed as an indented XML document.
func (f *Feed) Marshal() ([]byte, error) {
	out, err := xml.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode feed: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// authorName formats "First Family" for feed readers.
func authorName(a book.Author) string {
	switch {
	case a.FirstName != "" && a.FamilyName != "":
		return text(a.FirstName + " " + a.FamilyName)
	case a.FamilyName != "":
		return text(a.FamilyName)
	case a.FirstName != "":
		return text(a.FirstName)
	}
	return "Unknown Author"
}

// text undoes form escaping; encoding/xml escapes again on output.
func text(s string) string {
	return html.UnescapeString(s)
}
