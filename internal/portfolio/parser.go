// Package portfolio turns an uploaded holdings spreadsheet into typed holdings.
package portfolio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ChevesR/ibit-strategy-v5/internal/model"
)

// Column names of the upload format.
const (
	ColType     = "Type"
	ColQuantity = "Quantity"
	ColStrike   = "Strike"
	ColExpiry   = "Expiry"
	ColDelta    = "Delta"
)

// ErrUnsupportedFormat is returned for uploads that are neither xlsx nor csv.
var ErrUnsupportedFormat = errors.New("unsupported portfolio format")

// maxExcelSerial is 9999-12-31, the last date Excel can represent.
const maxExcelSerial = 2958465

var expiryLayouts = []string{
	"20060102",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"Jan 2 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// Parser reads portfolio uploads. Expiry dates without a zone are placed in
// Location.
type Parser struct {
	Location *time.Location
}

// NewParser creates a parser that interprets dates in the local zone.
func NewParser() *Parser {
	return &Parser{Location: time.Local}
}

// Parse reads an upload, choosing the format from the file name's extension.
func (p *Parser) Parse(name string, r io.Reader) (*model.Portfolio, error) {
	var (
		rows        [][]string
		serialDates bool
		err         error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
		serialDates = true
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, err
	}

	holdings, err := p.parseRows(rows, serialDates)
	if err != nil {
		return nil, err
	}
	return &model.Portfolio{Source: filepath.Base(name), Holdings: holdings}, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("open xlsx: workbook has no sheets")
	}
	// Raw values keep dates as serial numbers instead of locale-formatted text.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// ParseRows converts a header row followed by data rows into holdings. Row
// numbers in errors and holdings are 1-based, as a spreadsheet shows them.
// Cells are treated as text, so a bare number in Expiry is not a date.
func (p *Parser) ParseRows(rows [][]string) ([]model.Holding, error) {
	return p.parseRows(rows, false)
}

// parseRows is ParseRows with Excel serial day numbers optionally accepted
// as expiry dates, which is how raw xlsx cells carry them.
func (p *Parser) parseRows(rows [][]string, serialDates bool) ([]model.Holding, error) {
	headerIdx := -1
	for i, row := range rows {
		if !blank(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, &model.InvalidHoldingError{Field: ColType, Reason: "no header row"}
	}

	cols := map[string]int{}
	for i, name := range rows[headerIdx] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{ColType, ColQuantity} {
		if _, ok := cols[strings.ToLower(required)]; !ok {
			return nil, &model.InvalidHoldingError{Row: headerIdx + 1, Field: required, Reason: "missing column"}
		}
	}

	var holdings []model.Holding
	for i := headerIdx + 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		h, err := p.parseRow(i+1, rowReader{cols: cols, row: rows[i]}, serialDates)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

func (p *Parser) parseRow(rowNum int, r rowReader, serialDates bool) (model.Holding, error) {
	raw := r.get(ColType)
	h := model.Holding{Row: rowNum, Type: holdingType(raw)}
	if h.Type == model.HoldingOther {
		h.RawType = raw
	}

	qty, err := parseNumber(rowNum, ColQuantity, r.get(ColQuantity))
	if err != nil {
		return h, err
	}
	h.Quantity = qty

	if h.Type != model.HoldingCallOption {
		return h, nil
	}

	strikeRaw := r.get(ColStrike)
	if strikeRaw == "" {
		return h, &model.InvalidHoldingError{Row: rowNum, Field: ColStrike, Reason: "required for call options"}
	}
	if h.Strike, err = parseNumber(rowNum, ColStrike, strikeRaw); err != nil {
		return h, err
	}
	if h.Strike <= 0 {
		return h, &model.InvalidHoldingError{Row: rowNum, Field: ColStrike, Value: strikeRaw, Reason: "must be positive"}
	}

	if h.Expiry, err = p.parseExpiry(rowNum, r.get(ColExpiry), serialDates); err != nil {
		return h, err
	}

	h.Delta = model.DefaultDelta
	if deltaRaw := r.get(ColDelta); deltaRaw != "" {
		if h.Delta, err = parseNumber(rowNum, ColDelta, deltaRaw); err != nil {
			return h, err
		}
		if h.Delta < 0 || h.Delta > 1 {
			return h, &model.InvalidHoldingError{Row: rowNum, Field: ColDelta, Value: deltaRaw, Reason: "must be between 0 and 1"}
		}
	}
	return h, nil
}

func (p *Parser) parseExpiry(rowNum int, v string, serialDates bool) (time.Time, error) {
	if v == "" {
		return time.Time{}, &model.InvalidHoldingError{Row: rowNum, Field: ColExpiry, Reason: "required for call options"}
	}
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range expiryLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}

	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return time.Time{}, &model.InvalidHoldingError{Row: rowNum, Field: ColExpiry, Value: v, Reason: "unrecognised date format"}
	}
	if !serialDates {
		return time.Time{}, &model.InvalidHoldingError{Row: rowNum, Field: ColExpiry, Value: v, Reason: "not a date"}
	}
	if !(serial >= 1 && serial <= maxExcelSerial) {
		return time.Time{}, &model.InvalidHoldingError{Row: rowNum, Field: ColExpiry, Value: v, Reason: "date serial out of range"}
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, &model.InvalidHoldingError{Row: rowNum, Field: ColExpiry, Value: v, Reason: err.Error()}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

func holdingType(v string) model.HoldingType {
	for _, t := range []model.HoldingType{model.HoldingIBITShare, model.HoldingFBTCShare, model.HoldingCallOption} {
		if strings.EqualFold(strings.Join(strings.Fields(v), " "), string(t)) {
			return t
		}
	}
	return model.HoldingOther
}

// parseNumber accepts plain numbers as well as "$1,234.50". Blank is zero.
func parseNumber(rowNum int, field, v string) (float64, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(v)
	if clean == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &model.InvalidHoldingError{Row: rowNum, Field: field, Value: v, Reason: "not a number"}
	}
	return f, nil
}

type rowReader struct {
	cols map[string]int
	row  []string
}

func (r rowReader) get(col string) string {
	i, ok := r.cols[strings.ToLower(col)]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
