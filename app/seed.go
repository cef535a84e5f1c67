package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"

	"github.com/htol/locallibrary/service"
)

// ErrNotEmpty is returned by Seed when the catalogue already has authors.
var ErrNotEmpty = errors.New("catalogue is not empty")

type seedAuthor struct {
	first, family, born, died string
}

type seedBook struct {
	title, summary, isbn string
	author               int
	genres               []int
}

type seedCopy struct {
	book            int
	imprint, status string
	dueBack         string
}

var (
	seedAuthors = []seedAuthor{
		{"Patrick", "Rothfuss", "1973-06-06", ""},
		{"Ben", "Bova", "1932-11-08", ""},
		{"Isaac", "Asimov", "1920-01-02", "1992-04-06"},
		{"Bob", "Billings", "", ""},
		{"Jim", "Jones", "1971-12-16", ""},
	}
	seedGenres = []string{"Fantasy", "Science Fiction", "French Poetry"}
	seedBooks  = []seedBook{
		{"The Name of the Wind (The Kingkiller Chronicle, #1)", "I have stolen princesses back from sleeping barrow kings. I burned down the town of Trebon.", "9781473211896", 0, []int{0}},
		{"The Wise Man's Fear (The Kingkiller Chronicle, #2)", "Picking up the tale of Kvothe Kingkiller once again, we follow him into exile.", "9788401352836", 0, []int{0}},
		{"The Slow Regard of Silent Things (Kingkiller Chronicle)", "Deep below the University, there is a dark place.", "9780756411336", 0, []int{0}},
		{"Apes and Angels", "Humankind headed out to the stars not for conquest, nor exploration, nor even for curiosity.", "9780765379528", 1, []int{1}},
		{"Death Wave", "In Ben Bova's previous novel New Earth, Jordan Kell led the first human mission beyond the solar system.", "9780765379504", 1, []int{1}},
		{"Test Book 1", "Summary of test book 1", "ISBN111111", 4, []int{0, 1}},
		{"Test Book 2", "Summary of test book 2", "ISBN222222", 4, nil},
	}
	seedCopies = []seedCopy{
		{0, "London Gollancz, 2014.", "Available", ""},
		{1, "Gollancz, 2011.", "Loaned", "2026-12-01"},
		{2, "Gollancz, 2015.", "", ""},
		{3, "New York Tom Doherty Associates, 2016.", "Available", ""},
		{3, "New York Tom Doherty Associates, 2016.", "Available", ""},
		{3, "New York Tom Doherty Associates, 2016.", "Available", ""},
		{4, "New York, NY Tor, 2015.", "Available", ""},
		{4, "New York, NY Tor, 2015.", "Maintenance", ""},
		{4, "New York, NY Tor, 2015.", "Loaned", "2026-11-15"},
		{0, "Imprint XXX2", "", ""},
		{1, "Imprint XXX3", "", ""},
	}
)

// Seed loads a small sample catalogue through the regular create operations,
// so every record passes the same validation as a form submission.
func Seed(ctx context.Context, svc *service.Service) error {
	counts, err := svc.Counts(ctx)
	if err != nil {
		return err
	}
	if counts.Authors > 0 {
		return ErrNotEmpty
	}

	authors := make([]string, 0, len(seedAuthors))
	for _, a := range seedAuthors {
		id, err := created(svc.AuthorCreate(ctx, url.Values{
			"first_name":    {a.first},
			"family_name":   {a.family},
			"date_of_birth": {a.born},
			"date_of_death": {a.died},
		}))
		if err != nil {
			return fmt.Errorf("seed author %s: %w", a.family, err)
		}
		authors = append(authors, id)
	}

	genres := make([]string, 0, len(seedGenres))
	for _, name := range seedGenres {
		id, err := created(svc.GenreCreate(ctx, url.Values{"name": {name}}))
		if err != nil {
			return fmt.Errorf("seed genre %s: %w", name, err)
		}
		genres = append(genres, id)
	}

	books := make([]string, 0, len(seedBooks))
	for _, b := range seedBooks {
		values := url.Values{
			"title":   {b.title},
			"summary": {b.summary},
			"isbn":    {b.isbn},
			"author":  {authors[b.author]},
		}
		for _, g := range b.genres {
			values.Add("genre", genres[g])
		}
		id, err := created(svc.BookCreate(ctx, values))
		if err != nil {
			return fmt.Errorf("seed book %q: %w", b.title, err)
		}
		books = append(books, id)
	}

	for _, c := range seedCopies {
		_, err := created(svc.BookInstanceCreate(ctx, url.Values{
			"book":     {books[c.book]},
			"imprint":  {c.imprint},
			"status":   {c.status},
			"due_back": {c.dueBack},
		}))
		if err != nil {
			return fmt.Errorf("seed copy of %q: %w", seedBooks[c.book].title, err)
		}
	}
	return nil
}

// created returns the id of the record a create operation redirected to.
func created(res *service.Result, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if res.Redirect == "" {
		return "", fmt.Errorf("rejected by validation: %v", res.Data["errors"])
	}
	return path.Base(res.Redirect), nil
}
