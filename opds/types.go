// Package opds builds an OPDS 1.2 acquisition feed of the catalogue.
// OPDS (Open Publication Distribution System) is a syndication format for
// publications based on Atom (RFC 4287).
package opds

import (
	"encoding/xml"
	"time"
)

// Namespaces
const (
	NamespaceAtom = "http://www.w3.org/2005/Atom"
	NamespaceDC   = "http://purl.org/dc/terms/"
	NamespaceOpds = "http://opds-spec.org/2010/catalog"
)

// Media Types
const (
	TypeNavigation  = "application/atom+xml;profile=opds-catalog;kind=navigation"
	TypeAcquisition = "application/atom+xml;profile=opds-catalog;kind=acquisition"
	TypeHTML        = "text/html"
)

const (
	RelSelf      = "self"
	RelStart     = "start"
	RelAlternate = "alternate"
	RelRelated   = "related"
)

// GenreScheme identifies catalogue genres in category elements.
const GenreScheme = "urn:locallibrary:genre"

// Feed is an Atom feed carrying one entry per book.
type Feed struct {
	XMLName   xml.Name  `xml:"feed"`
	Xmlns     string    `xml:"xmlns,attr"`
	XmlnsDc   string    `xml:"xmlns:dc,attr,omitempty"`
	XmlnsOpds string    `xml:"xmlns:opds,attr,omitempty"`
	ID        string    `xml:"id"`
	Title     string    `xml:"title"`
	Updated   time.Time `xml:"updated"`
	Author    *Author   `xml:"author,omitempty"`
	Links     []Link    `xml:"link"`
	Entries   []Entry   `xml:"entry"`
}

// Entry describes one book
type Entry struct {
	ID         string     `xml:"id"`
	Title      string     `xml:"title"`
	Updated    time.Time  `xml:"updated"`
	Summary    string     `xml:"summary,omitempty"`
	Authors    []Author   `xml:"author,omitempty"`
	Links      []Link     `xml:"link"`
	Categories []Category `xml:"category,omitempty"`
	// Dublin Core
	Identifier string `xml:"dc:identifier,omitempty"`
}

type Author struct {
	Name string `xml:"name"`
	URI  string `xml:"uri,omitempty"`
}

type Link struct {
	Rel   string `xml:"rel,attr"`
	Href  string `xml:"href,attr"`
	Type  string `xml:"type,attr,omitempty"`
	Title string `xml:"title,attr,omitempty"`
}

// Category carries a genre
type Category struct {
	Scheme string `xml:"scheme,attr,omitempty"`
	Term   string `xml:"term,attr"`
	Label  string `xml:"label,attr,omitempty"`
}
