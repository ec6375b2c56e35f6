package report

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Engine renders a Document to bytes. The layout collaborator is kept
// behind this interface so the rest of the module never depends on a
// PDF library.
type Engine interface {
	Render(doc *Document) ([]byte, error)
}

// MarotoEngine renders documents with maroto on an A4 page.
type MarotoEngine struct{}

// NewMarotoEngine creates the PDF engine.
func NewMarotoEngine() *MarotoEngine {
	return &MarotoEngine{}
}

// Render lays out the title, summary, performance table and feed.
func (e *MarotoEngine) Render(doc *Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithRightMargin(12).
		WithTopMargin(12).
		Build()

	m := maroto.New(cfg)

	m.AddRows(text.NewRow(12, doc.Title, props.Text{Size: 16, Style: fontstyle.Bold}))
	m.AddRows(text.NewRow(8, "Özet", props.Text{Size: 11, Style: fontstyle.Bold, Top: 2}))

	if len(doc.Summary) == 0 {
		m.AddRows(text.NewRow(6, "Kayıt yok.", props.Text{Size: 10}))
	}
	for _, line := range doc.Summary {
		m.AddRows(text.NewRow(6, "• "+line, props.Text{Size: 10}))
	}

	if len(doc.Performance) > 0 {
		m.AddRows(text.NewRow(8, "Öğrenci Özeti (Bugün)", props.Text{Size: 11, Style: fontstyle.Bold, Top: 2}))
		m.AddRow(6,
			text.NewCol(6, "Öğrenci", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(2, "Hasta", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(2, "Vizit", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(2, "Kritik", props.Text{Size: 9, Style: fontstyle.Bold}),
		)
		for _, row := range doc.Performance {
			m.AddRow(6,
				text.NewCol(6, row.Author, props.Text{Size: 9}),
				text.NewCol(2, strconv.Itoa(row.Patients), props.Text{Size: 9}),
				text.NewCol(2, strconv.Itoa(row.Visits), props.Text{Size: 9}),
				text.NewCol(2, strconv.Itoa(row.Critical), props.Text{Size: 9}),
			)
		}
	}

	if len(doc.Feed) > 0 {
		m.AddRows(text.NewRow(8, "Bölüm Akışı (kısa liste)", props.Text{Size: 11, Style: fontstyle.Bold, Top: 2}))
		for _, row := range doc.Feed {
			header := fmt.Sprintf("%s — %s — %s", row.Time, row.Author, row.PatientID)
			m.AddRows(text.NewRow(5, header, props.Text{Size: 9, Style: fontstyle.Bold}))
			m.AddRows(text.NewRow(5, row.Text, props.Text{Size: 9}))
		}
	}

	rendered, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	return rendered.GetBytes(), nil
}
