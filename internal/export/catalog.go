// Package export renders the book catalog as XML.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Dan9191/book-service/internal/models"
	"github.com/beevik/etree"
)

// ContentType is the media type of the rendered document.
const ContentType = "application/xml; charset=utf-8"

// BuildCatalog builds a <catalog> document with one <book> per entry.
func BuildCatalog(books []models.BookLikes, generatedAt time.Time) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	catalog := doc.CreateElement("catalog")
	catalog.CreateAttr("generated", generatedAt.UTC().Format(time.RFC3339))
	catalog.CreateAttr("count", strconv.Itoa(len(books)))

	for _, b := range books {
		el := catalog.CreateElement("book")
		el.CreateAttr("id", b.ID.String())
		el.CreateElement("title").SetText(b.Title)
		el.CreateElement("author").SetText(b.Author)
		if b.Description != "" {
			el.CreateElement("description").SetText(b.Description)
		}
		el.CreateElement("rating").SetText(strconv.Itoa(b.Rating))
		el.CreateElement("price").SetText(strconv.FormatFloat(b.Price, 'f', 2, 64))
		if b.PublishedAt != nil {
			el.CreateElement("published").SetText(b.PublishedAt.UTC().Format("2006-01-02"))
		}
		el.CreateElement("likes").SetText(strconv.Itoa(b.Likes))
	}

	doc.Indent(2)
	return doc
}

// WriteCatalog writes the catalog document to w.
func WriteCatalog(w io.Writer, books []models.BookLikes, generatedAt time.Time) error {
	if _, err := BuildCatalog(books, generatedAt).WriteTo(w); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}
