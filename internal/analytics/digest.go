package analytics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/menulens/menulens/internal/query"
)

const sampleRowCount = 5

type ColumnStats struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// BuildDigest renders the row count, column names, leading rows and
// numeric column statistics as plain text for the insight prompt.
func BuildDigest(result query.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Number of rows: %d\n", len(result.Rows))
	fmt.Fprintf(&sb, "Columns: %s\n\n", strings.Join(result.Columns, ", "))

	sb.WriteString("Sample data:\n")
	sample := result.Rows
	if len(sample) > sampleRowCount {
		sample = sample[:sampleRowCount]
	}
	writeTable(&sb, result.Columns, len(sample), func(row, col int) string {
		return formatCell(sample[row][col])
	})

	stats := NumericStats(result)
	if len(stats) > 0 {
		sb.WriteString("\n\nNumeric column statistics:\n")
		headers := make([]string, 0, len(stats))
		for _, s := range stats {
			headers = append(headers, s.Column)
		}
		labels := []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
		writeTable(&sb, append([]string{""}, headers...), len(labels), func(row, col int) string {
			if col == 0 {
				return labels[row]
			}
			return formatStat(stats[col-1], row)
		})
	}
	return strings.TrimRight(sb.String(), "\n")
}

// NumericStats describes every column whose non-null values are all Go
// integers or floats, in column order.
func NumericStats(result query.Result) []ColumnStats {
	stats := make([]ColumnStats, 0)
	for col, name := range result.Columns {
		values, ok := numericColumn(result.Rows, col)
		if !ok {
			continue
		}
		stats = append(stats, describe(name, values))
	}
	return stats
}

func numericColumn(rows [][]any, col int) ([]float64, bool) {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		value, ok := toFloat(row[col])
		if !ok {
			return nil, false
		}
		values = append(values, value)
	}
	return values, len(values) > 0
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}

func describe(column string, values []float64) ColumnStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	n := len(sorted)
	mean := sum / float64(n)

	std := math.NaN()
	if n > 1 {
		var squares float64
		for _, v := range sorted {
			squares += (v - mean) * (v - mean)
		}
		std = math.Sqrt(squares / float64(n-1))
	}

	return ColumnStats{
		Column: column,
		Count:  n,
		Mean:   mean,
		Std:    std,
		Min:    sorted[0],
		Q25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q75:    quantile(sorted, 0.75),
		Max:    sorted[n-1],
	}
}

// quantile uses linear interpolation between the closest ranks of a sorted
// slice.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

func writeTable(sb *strings.Builder, headers []string, rows int, cell func(row, col int) string) {
	w := tabwriter.NewWriter(sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, strings.Join(headers, "\t")+"\t")
	for row := 0; row < rows; row++ {
		cells := make([]string, len(headers))
		for col := range headers {
			cells[col] = cell(row, col)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	}
	_ = w.Flush()
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return "NULL"
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case time.Time:
		return typed.Format(time.DateTime)
	default:
		return fmt.Sprint(typed)
	}
}

func formatStat(s ColumnStats, row int) string {
	var value float64
	switch row {
	case 0:
		return strconv.Itoa(s.Count)
	case 1:
		value = s.Mean
	case 2:
		value = s.Std
	case 3:
		value = s.Min
	case 4:
		value = s.Q25
	case 5:
		value = s.Median
	case 6:
		value = s.Q75
	default:
		value = s.Max
	}
	return strconv.FormatFloat(value, 'f', 2, 64)
}
