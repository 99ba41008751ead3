package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/census-explorer/internal/pipeline"
)

func exportTable() *pipeline.Table {
	rate := 4.25
	return &pipeline.Table{Records: []pipeline.CountyRecord{
		{FIPS: 1001, GiniIndex: 0.4512, MedianFamilyIncome: 67000, VacantHousing: 2600, PercentUnemployed: &rate, IncomeQuartile: 3},
		{FIPS: 1003, GiniIndex: 0.4601, MedianFamilyIncome: 71500, VacantHousing: 22000, IncomeQuartile: 4},
	}}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportTable()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Gini Index", "Vacant Housing", "Percent Unemployed", "Median Family Income"}, rows[0])
	assert.Equal(t, []string{"0.4512", "2600", "4.25", "67000"}, rows[1])
	assert.Equal(t, []string{"0.4601", "22000", "", "71500"}, rows[2])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, exportTable()))

	x, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer x.Close()
	rows, err := x.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, pipeline.DisplayColumns(), rows[0])
	assert.Equal(t, "67000", rows[1][3])
	assert.Equal(t, "", rows[2][2])
}

func TestSaveAndParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = ParseFormat("parquet")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, Save(path, exportTable(), FormatCSV))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Gini Index,Vacant Housing,Percent Unemployed,Median Family Income\n")
}
