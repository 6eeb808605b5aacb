package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/menulens/menulens/internal/query"
)

const (
	metadataQuestion = "menulens.question"
	metadataSQL      = "menulens.sql"
	metadataColumns  = "menulens.columns"
)

// exportCell is one result cell in long format. Value holds the text form of
// every non-null cell; Number is set only for numeric cells.
type exportCell struct {
	Row    int64    `parquet:"row"`
	Column string   `parquet:"column"`
	Value  *string  `parquet:"value,optional"`
	Number *float64 `parquet:"number,optional"`
}

type EncodeResult struct {
	Data      []byte
	RowCount  int64
	CellCount int64
}

// Encode writes the result table as Parquet cells. The question, the
// statement and the column order travel as file metadata.
func Encode(question, statement string, result query.Result) (EncodeResult, error) {
	if len(result.Columns) == 0 {
		return EncodeResult{}, fmt.Errorf("result has no columns")
	}

	cells := make([]exportCell, 0, len(result.Rows)*len(result.Columns))
	for rowIndex, row := range result.Rows {
		if len(row) != len(result.Columns) {
			return EncodeResult{}, fmt.Errorf("row %d has %d values for %d columns", rowIndex, len(row), len(result.Columns))
		}
		for colIndex, value := range row {
			cells = append(cells, toCell(int64(rowIndex), result.Columns[colIndex], value))
		}
	}

	columns, err := encodeColumns(result.Columns)
	if err != nil {
		return EncodeResult{}, err
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[exportCell](buf,
		parquet.KeyValueMetadata(metadataQuestion, question),
		parquet.KeyValueMetadata(metadataSQL, statement),
		parquet.KeyValueMetadata(metadataColumns, columns),
	)
	if len(cells) > 0 {
		if _, err := writer.Write(cells); err != nil {
			return EncodeResult{}, fmt.Errorf("write parquet cells: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return EncodeResult{}, fmt.Errorf("close parquet writer: %w", err)
	}

	return EncodeResult{
		Data:      buf.Bytes(),
		RowCount:  int64(len(result.Rows)),
		CellCount: int64(len(cells)),
	}, nil
}

func toCell(row int64, column string, value any) exportCell {
	cell := exportCell{Row: row, Column: column}
	if value == nil {
		return cell
	}
	text, number, numeric := render(value)
	cell.Value = &text
	if numeric {
		cell.Number = &number
	}
	return cell
}

func render(value any) (string, float64, bool) {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10), float64(v), true
	case int:
		return strconv.Itoa(v), float64(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), float64(v), true
	case uint64:
		return strconv.FormatUint(v, 10), float64(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), v, true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), float64(v), true
	case *big.Int:
		f, _ := new(big.Float).SetInt(v).Float64()
		return v.String(), f, true
	case bool:
		return strconv.FormatBool(v), 0, false
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), 0, false
	case string:
		return v, 0, false
	case []byte:
		return string(v), 0, false
	default:
		return fmt.Sprint(v), 0, false
	}
}

func encodeColumns(columns []string) (string, error) {
	data, err := json.Marshal(columns)
	if err != nil {
		return "", fmt.Errorf("encode column metadata: %w", err)
	}
	return string(data), nil
}
