package sheets

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/socialpulse/socialpulse/internal/models"
)

// XLSXSource reads tabs from a local workbook export of the spreadsheet. The
// range label is the worksheet name; the spreadsheet id is ignored.
type XLSXSource struct {
	path string
}

// NewXLSXSource returns a source over the workbook at path. The file is
// opened on every fetch so a replaced export is picked up by the next import.
func NewXLSXSource(path string) *XLSXSource {
	return &XLSXSource{path: path}
}

// Name identifies the source.
func (s *XLSXSource) Name() string {
	return "xlsx"
}

// Fetch returns the displayed values of the worksheet.
func (s *XLSXSource) Fetch(ctx context.Context, _ string, rangeLabel string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, s.fail(rangeLabel, err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, s.fail(rangeLabel, fmt.Errorf("open workbook: %w", err))
	}
	defer f.Close()

	rows, err := f.GetRows(rangeLabel)
	if err != nil {
		return nil, s.fail(rangeLabel, err)
	}
	if len(rows) == 0 {
		return nil, s.fail(rangeLabel, models.ErrEmptyRange)
	}
	return rows, nil
}

func (s *XLSXSource) fail(rangeLabel string, err error) error {
	return &models.UpstreamFetchError{Source: s.Name(), Range: rangeLabel, Err: err}
}
