package service

import (
	"github.com/samber/lo"

	"github.com/htol/locallibrary/book"
)

// genreOptions checks every genre whose id is in selected.
func genreOptions(genres []book.Genre, selected []string) []book.GenreOption {
	return lo.Map(genres, func(g book.Genre, _ int) book.GenreOption {
		return book.GenreOption{Genre: g, Checked: lo.Contains(selected, g.ID)}
	})
}

// authorOptions selects the author whose id equals selected.
func authorOptions(authors []book.Author, selected string) []book.AuthorOption {
	return lo.Map(authors, func(a book.Author, _ int) book.AuthorOption {
		return book.AuthorOption{Author: a, Selected: selected != "" && a.ID == selected}
	})
}

func bookOptions(books []book.Book, selected string) []book.BookOption {
	return lo.Map(books, func(b book.Book, _ int) book.BookOption {
		return book.BookOption{Book: b, Selected: selected != "" && b.ID == selected}
	})
}
