package domain

const (
	BookStatusAvailable = "available"

	// DefaultCopies is used when a create/update payload omits copies_available.
	DefaultCopies = 1
)

// Book is a catalogue entry. CopiesAvailable is decremented on borrow and
// incremented on return.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationYear int64  `json:"publication_year"`
	Genre           string `json:"genre"`
	CopiesAvailable int64  `json:"copies_available"`
	Status          string `json:"status"`
}
