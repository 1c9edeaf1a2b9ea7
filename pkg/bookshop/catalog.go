package bookshop

import (
	"bytes"
	_ "embed"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Book is one row of the browse catalog.
type Book struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	Genre       string `yaml:"genre"`
	Description string `yaml:"description"`
	Stock       int    `yaml:"stock"`
}

// Field views a book as the path-addressable row the filter predicates
// operate on.
func (b Book) Field(path string) string {
	switch path {
	case "ID":
		return b.ID
	case "title":
		return b.Title
	case "author":
		return b.Author
	case "genre":
		return b.Genre
	default:
		return ""
	}
}

//go:embed books.yaml
var defaultSeed []byte

// LoadCatalog reads a YAML seed of the form {books: [...]}.
func LoadCatalog(r io.Reader) ([]Book, error) {
	var doc struct {
		Books []Book `yaml:"books"`
	}
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	if len(doc.Books) == 0 {
		return nil, errors.New("catalog contains no books")
	}
	for i, b := range doc.Books {
		if b.ID == "" {
			return nil, errors.Errorf("book %d has no id", i)
		}
	}
	return doc.Books, nil
}

// DefaultCatalog returns the embedded seed catalog.
func DefaultCatalog() []Book {
	books, err := LoadCatalog(bytes.NewReader(defaultSeed))
	if err != nil {
		// The seed is compiled in; failing to parse it is a build defect.
		panic(err)
	}
	return books
}
