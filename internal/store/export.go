package store

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// exportColumns is the fixed export column order. Downstream sheets
// key on these headings, so the order is part of the contract.
var exportColumns = []string{
	"Company Name",
	"Website",
	"LinkedIn",
	"Location",
	"Business Model",
	"Outsourcing Score (1-10)",
	"Contact Found",
	"Emails",
	"Phone Numbers",
	"Next Action",
	"Notes",
}

// WriteCSV writes leads as CSV with the fixed column set, one row per
// lead in the given order.
func WriteCSV(w io.Writer, leads []model.Lead) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportColumns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for i := range leads {
		if err := cw.Write(leadRow(&leads[i])); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", leads[i].CanonicalDomain)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteXLSX writes leads to an XLSX workbook at path, same columns as
// the CSV export.
func WriteXLSX(path string, leads []model.Lead) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range exportColumns {
		header.AddCell().SetString(col)
	}
	for i := range leads {
		row := sheet.AddRow()
		for _, cell := range leadRow(&leads[i]) {
			row.AddCell().SetString(cell)
		}
	}

	return eris.Wrapf(file.Save(path), "export: save xlsx %s", path)
}

func leadRow(l *model.Lead) []string {
	score := ""
	if l.OutsourcingScore > 0 {
		score = strconv.Itoa(l.OutsourcingScore)
	}
	contactFound := "No"
	if l.ContactFound {
		contactFound = "Yes"
	}
	return []string{
		l.CompanyName,
		l.Website,
		l.LinkedInURL,
		l.Location,
		string(l.BusinessModel),
		score,
		contactFound,
		strings.Join(l.Emails, "; "),
		strings.Join(l.Phones, "; "),
		l.NextAction,
		l.Notes,
	}
}
