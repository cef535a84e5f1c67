package book

// GenreOption is a genre checkbox on the book form.
type GenreOption struct {
	Genre
	Checked bool `json:"checked"`
}

// AuthorOption is an entry of the author select on the book form.
type AuthorOption struct {
	Author
	Selected bool `json:"selected"`
}

// BookOption is an entry of the book select on the copy form.
type BookOption struct {
	Book
	Selected bool `json:"selected"`
}

// Counts summarises the catalogue for the home page.
type Counts struct {
	Books              int `json:"book_count"`
	BookInstances      int `json:"book_instance_count"`
	AvailableInstances int `json:"book_instance_available_count"`
	Authors            int `json:"author_count"`
	Genres             int `json:"genre_count"`
}
