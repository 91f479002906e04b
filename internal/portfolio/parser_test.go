package portfolio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ChevesR/ibit-strategy-v5/internal/model"
)

func utcParser() *Parser { return &Parser{Location: time.UTC} }

const sampleCSV = `Type,Quantity,Strike,Expiry,Delta
IBIT Share,500,,,
FBTC Share,378,,,
Call Option,2,60,2026-01-16,0.8
call option,1,"$1,000",1/15/2027,
Bitcoin Miner,10,,,
`

func TestParse_CSV(t *testing.T) {
	p, err := utcParser().Parse("holdings.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, p.Holdings, 5)
	assert.Equal(t, "holdings.csv", p.Source)

	assert.Equal(t, model.HoldingIBITShare, p.Holdings[0].Type)
	assert.Equal(t, 2, p.Holdings[0].Row)
	assert.Equal(t, 878.0, p.IBITEquivalentShares(1))
	assert.Equal(t, 500+378*0.5, p.IBITEquivalentShares(0.5))

	opts := p.Options()
	require.Len(t, opts, 2)
	assert.Equal(t, 60.0, opts[0].Strike)
	assert.Equal(t, 0.8, opts[0].Delta)
	assert.Equal(t, time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC), opts[0].Expiry)
	assert.Equal(t, 1000.0, opts[1].Strike)
	assert.Equal(t, model.DefaultDelta, opts[1].Delta, "missing delta defaults at parse time")
	assert.Equal(t, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), opts[1].Expiry)

	assert.Equal(t, model.HoldingOther, p.Holdings[4].Type)
	assert.Equal(t, "Bitcoin Miner", p.Holdings[4].RawType)
}

func TestParse_CSVWithoutDeltaColumn(t *testing.T) {
	in := "Type,Quantity,Strike,Expiry\nCall Option,1,55,2026-03-20\n"
	p, err := utcParser().Parse("h.csv", strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, model.DefaultDelta, p.Holdings[0].Delta)
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Type", "Quantity", "Strike", "Expiry", "Delta"},
		{"IBIT Share", 1200},
		{"FBTC Share", 556},
		{"Call Option", 3, 70.5, time.Date(2026, 6, 18, 0, 0, 0, 0, time.UTC), 0.35},
		{"Call Option", 1, 90, "2027-01-15"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	p, err := utcParser().Parse("Portfolio.XLSX", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, p.Holdings, 4)
	assert.Equal(t, 1756.0, p.IBITEquivalentShares(1))

	opts := p.Options()
	require.Len(t, opts, 2)
	assert.Equal(t, 70.5, opts[0].Strike)
	assert.Equal(t, 0.35, opts[0].Delta)
	assert.Equal(t, time.Date(2026, 6, 18, 0, 0, 0, 0, time.UTC), opts[0].Expiry)
	assert.Equal(t, model.DefaultDelta, opts[1].Delta)
	assert.Equal(t, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), opts[1].Expiry)
}

func TestParseRows_CompactExpiry(t *testing.T) {
	holdings, err := utcParser().ParseRows([][]string{
		{"Type", "Quantity", "Strike", "Expiry"},
		{"Call Option", "1", "60", "20260116"},
	})
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC), holdings[0].Expiry)
}

func TestParse_XLSXSerialOutOfRange(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Type", "Quantity", "Strike", "Expiry"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Call Option", 1, 60, 3000000}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = utcParser().Parse("p.xlsx", bytes.NewReader(buf.Bytes()))
	var ihe *model.InvalidHoldingError
	require.ErrorAs(t, err, &ihe)
	assert.Equal(t, ColExpiry, ihe.Field)
	assert.Equal(t, 2, ihe.Row)
	assert.Equal(t, "3000000", ihe.Value)
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := utcParser().Parse("holdings.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseRows_InvalidFields(t *testing.T) {
	header := []string{"Type", "Quantity", "Strike", "Expiry", "Delta"}
	tests := []struct {
		name  string
		row   []string
		field string
	}{
		{"non-numeric quantity", []string{"IBIT Share", "lots"}, ColQuantity},
		{"non-numeric strike", []string{"Call Option", "1", "sixty", "2026-01-16"}, ColStrike},
		{"missing strike", []string{"Call Option", "1", "", "2026-01-16"}, ColStrike},
		{"negative strike", []string{"Call Option", "1", "-5", "2026-01-16"}, ColStrike},
		{"bad expiry", []string{"Call Option", "1", "60", "next friday"}, ColExpiry},
		{"missing expiry", []string{"Call Option", "1", "60", ""}, ColExpiry},
		{"bare year", []string{"Call Option", "1", "60", "2026"}, ColExpiry},
		{"serial number in text", []string{"Call Option", "1", "60", "46038"}, ColExpiry},
		{"delta out of range", []string{"Call Option", "1", "60", "2026-01-16", "1.2"}, ColDelta},
		{"non-numeric delta", []string{"Call Option", "1", "60", "2026-01-16", "high"}, ColDelta},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := utcParser().ParseRows([][]string{header, tt.row})
			var ihe *model.InvalidHoldingError
			require.ErrorAs(t, err, &ihe)
			assert.Equal(t, tt.field, ihe.Field)
			assert.Equal(t, 2, ihe.Row)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestParseRows_HeaderHandling(t *testing.T) {
	holdings, err := utcParser().ParseRows([][]string{
		{},
		{" type ", "QUANTITY"},
		{"", ""},
		{"IBIT Share", "10"},
	})
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, 4, holdings[0].Row)

	_, err = utcParser().ParseRows([][]string{{"Type", "Strike"}, {"IBIT Share", "1"}})
	var ihe *model.InvalidHoldingError
	require.ErrorAs(t, err, &ihe)
	assert.Equal(t, ColQuantity, ihe.Field)

	_, err = utcParser().ParseRows(nil)
	require.ErrorAs(t, err, &ihe)
}
