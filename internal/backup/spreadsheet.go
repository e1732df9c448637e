package backup

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"enriquecer/internal/core"
)

// SheetName is the worksheet holding the exported transactions.
const SheetName = "Lançamentos"

var header = []string{"Data", "Tipo", "Descrição", "Categoria", "Valor"}

func kindLabel(k core.Kind) string {
	switch k {
	case core.KindIncome:
		return "Receita"
	case core.KindExpense:
		return "Despesa"
	default:
		return string(k)
	}
}

// Row renders one transaction as spreadsheet cells in header order. The amount
// uses a dot decimal separator so spreadsheets parse it as a number.
func Row(t core.Transaction) []string {
	return []string{
		t.Date,
		kindLabel(t.Kind),
		t.Description,
		t.CategoryName(),
		strconv.FormatFloat(t.Amount, 'f', 2, 64),
	}
}

// Header returns the column titles used by every tabular export.
func Header() []string {
	return append([]string(nil), header...)
}

// WriteCSV writes txs as CSV preceded by a UTF-8 BOM so Excel detects the
// encoding of accented category names.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txs {
		if err := cw.Write(Row(t)); err != nil {
			return fmt.Errorf("write csv row %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes txs as a single-sheet workbook.
func WriteXLSX(w io.Writer, txs []core.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, t := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{t.Date, kindLabel(t.Kind), t.Description, t.CategoryName(), t.Amount}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 12)
	_ = f.SetColWidth(SheetName, "B", "B", 10)
	_ = f.SetColWidth(SheetName, "C", "C", 32)
	_ = f.SetColWidth(SheetName, "D", "D", 16)
	_ = f.SetColWidth(SheetName, "E", "E", 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
