package schema

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ============================================================================
// AUTO-DISCOVERY — Column typing + decimal convention detection
// ============================================================================
// Inspects raw CSV and fills in the event schema:
//   1. Read header → normalised snake_case keys
//   2. Sample rows → infer each column type under the "." convention
//   3. No floating-point column? → infer again under the "," convention
//   4. Still none → ErrDecimalFormat
//   5. Attach sample values / cardinality to the declared dimensions
//   6. Record columns that are not part of the event schema as skipped
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize int    // Max rows to inspect (0 = all). Default: 1000
	Name       string // Dataset name override
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
	}
}

// ColumnType is the inferred type of a CSV column.
type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeInteger ColumnType = "integer"
	TypeFloat   ColumnType = "float"
)

// DiscoverFromCSV builds the event schema by inspecting CSV data.
// The returned Config is not validated; call Validate before parsing rows.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	// 1. Read headers
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("CSV has no columns")
	}

	// 2. Read sample rows
	var rows [][]string
	limit := opt.SampleSize
	if limit <= 0 {
		limit = -1
	}
	for limit < 0 || len(rows) < limit {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	// 3-4. Decimal convention
	mark, columns, err := detectDecimal(headers, rows)
	if err != nil {
		return nil, err
	}

	// 5. Fill in the declared schema
	config := EventConfig()
	if opt.Name != "" {
		config.Name = opt.Name
	}
	config.Decimal = mark

	declared := make(map[string]bool)
	for _, key := range config.DimensionKeys() {
		declared[key] = true
	}
	for _, key := range config.MeasureKeys() {
		declared[key] = true
	}

	byKey := make(map[string]columnAnalysis, len(columns))
	for _, col := range columns {
		if _, dup := byKey[col.key]; dup {
			config.SkippedColumns = append(config.SkippedColumns, SkippedColumn{
				Column: col.header,
				Reason: fmt.Sprintf("Duplicate column key %q", col.key),
			})
			continue
		}
		byKey[col.key] = col
		config.Columns = append(config.Columns, ColumnInfo{
			Header: col.header,
			Key:    col.key,
			Index:  col.index,
			Type:   col.colType,
		})
		if !declared[col.key] {
			// 6. Extra columns
			config.SkippedColumns = append(config.SkippedColumns, SkippedColumn{
				Column:      col.header,
				Reason:      "Not part of the event schema",
				Recoverable: true,
			})
		}
	}

	for i := range config.Dimensions {
		if col, ok := byKey[config.Dimensions[i].Key]; ok {
			config.Dimensions[i].SampleValues = col.sampleVals
			config.Dimensions[i].CardinalityHint = col.cardinalityHint
		}
	}

	config.DiscoveredFrom = "CSV"
	config.DiscoveredAt = time.Now().Format(time.RFC3339)
	return config, nil
}

// detectDecimal infers column types under "." first and falls back to ","
// when that yields no floating-point column.
func detectDecimal(headers []string, rows [][]string) (string, []columnAnalysis, error) {
	for _, mark := range []string{DecimalPoint, DecimalComma} {
		columns := make([]columnAnalysis, len(headers))
		hasFloat := false
		for i, header := range headers {
			columns[i] = analyzeColumn(header, i, rows, mark)
			if columns[i].colType == TypeFloat {
				hasFloat = true
			}
		}
		if hasFloat {
			return mark, columns, nil
		}
	}
	return "", nil, ErrDecimalFormat
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnAnalysis struct {
	header  string
	key     string
	index   int
	colType ColumnType

	// Stats
	uniqueCount     int
	nullCount       int
	sampleVals      []string
	cardinalityHint string
}

// analyzeColumn inspects all sampled values in a column.
func analyzeColumn(header string, index int, rows [][]string, mark string) columnAnalysis {
	col := columnAnalysis{
		header: strings.TrimSpace(header),
		key:    toSnakeCase(header),
		index:  index,
	}

	values := make([]string, 0, len(rows))
	uniqueSet := make(map[string]bool)

	for _, row := range rows {
		if index >= len(row) {
			col.nullCount++
			continue
		}
		val := strings.TrimSpace(row[index])
		if nullTokens[val] {
			col.nullCount++
			continue
		}
		values = append(values, val)
		uniqueSet[val] = true
	}

	col.uniqueCount = len(uniqueSet)
	col.sampleVals = collectSamples(uniqueSet, 10)
	col.colType = detectType(values, mark)
	col.cardinalityHint = cardinality(col.uniqueCount)
	return col
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectType requires 80%+ of non-null values to parse as numbers. A numeric
// column is floating-point when at least one value carries the decimal mark
// or is fractional in exponent form (1e-05).
func detectType(values []string, mark string) ColumnType {
	if len(values) == 0 {
		return TypeString
	}

	numCount := 0
	fractional := false
	for _, v := range values {
		if d, ok := ParseNumber(v, mark); ok {
			numCount++
			if strings.Contains(v, mark) || !d.IsInteger() {
				fractional = true
			}
		}
	}

	threshold := int(float64(len(values)) * 0.8)
	if threshold == 0 {
		threshold = 1
	}
	if numCount < threshold {
		return TypeString
	}
	if fractional {
		return TypeFloat
	}
	return TypeInteger
}

// ParseNumber parses s as a decimal number written with the given mark.
// Values containing the other convention's mark do not parse.
func ParseNumber(s, mark string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	switch mark {
	case DecimalComma:
		if strings.Contains(s, ".") || strings.Count(s, ",") > 1 {
			return decimal.Zero, false
		}
		s = strings.Replace(s, ",", ".", 1)
	default:
		if strings.Contains(s, ",") {
			return decimal.Zero, false
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// nullTokens are cell values treated as missing during type inference.
var nullTokens = map[string]bool{"": true, "null": true, "NULL": true, "N/A": true, "n/a": true, "NaN": true}

func cardinality(unique int) string {
	switch {
	case unique <= 10:
		return "low"
	case unique <= 100:
		return "medium"
	default:
		return "high"
	}
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toSnakeCase turns a header into a column key: "Message Type",
// "messageType" and "message-type" all become "message_type".
func toSnakeCase(s string) string {
	s = strings.TrimPrefix(norm.NFC.String(strings.TrimSpace(s)), "\ufeff")

	var words []string
	var word []rune
	flush := func() {
		if len(word) > 0 {
			words = append(words, strings.ToLower(string(word)))
			word = word[:0]
		}
	}

	var prev rune
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			word = append(word, r)
		default:
			word = append(word, r)
		}
		prev = r
	}
	flush()
	return strings.Join(words, "_")
}

// toDisplayName cleans a key for human display.
// "total_work" → "Total Work"
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

// collectSamples picks up to maxSamples representative values.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}

	// Sort for deterministic output
	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
