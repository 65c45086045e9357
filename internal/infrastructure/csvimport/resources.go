package csvimport

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// Resource library columns. Only name is mandatory.
const (
	ColName          = "name"
	ColDescription   = "description"
	ColBrand         = "brand"
	ColReference     = "reference"
	ColImageURL      = "image_url"
	ColProductURL    = "product_url"
	ColPrice         = "price"
	ColPricePro      = "price_pro"
	ColSupplier      = "supplier"
	ColCountryOrigin = "country_origin"
	ColTags          = "tags"
	ColCategory      = "category"
	ColParent        = "parent"
	ColSub1          = "sub_category_1"
	ColSub2          = "sub_category_2"
)

// ResourceRow is a decoded library line. Category names are left for the
// caller to resolve against the taxonomy.
type ResourceRow struct {
	Line          int
	Name          string
	Description   string
	Brand         string
	Reference     string
	ImageURL      string
	ProductURL    string
	Price         *decimal.Decimal
	PricePro      *decimal.Decimal
	Supplier      string
	CountryOrigin string
	Tags          []string
	Category      string
	Parent        string
	Sub1          string
	Sub2          string
}

// HasPath reports whether the row names a full parent > sub1 > sub2 path.
func (r ResourceRow) HasPath() bool {
	return r.Parent != "" && r.Sub1 != "" && r.Sub2 != ""
}

// ReadResources decodes every row. Lines that cannot be decoded are reported
// in the second return value and skipped; only an unreadable file is fatal.
func ReadResources(r io.Reader, opts ...ParserOption) ([]ResourceRow, []*RowError, error) {
	p, err := NewParser(r, opts...)
	if err != nil {
		return nil, nil, err
	}
	if missing := p.Missing(ColName); len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: missing column(s) %s", ErrMissingHeader, strings.Join(missing, ", "))
	}

	var (
		rows    []ResourceRow
		skipped []*RowError
	)
	for {
		row, err := p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			skipped = append(skipped, rowErr)
			continue
		}
		if err != nil {
			return rows, skipped, err
		}
		if row.IsEmpty() {
			continue
		}
		res, rowErr := decodeResource(row)
		if rowErr != nil {
			skipped = append(skipped, rowErr)
			continue
		}
		rows = append(rows, res)
	}
	return rows, skipped, nil
}

func decodeResource(row Row) (ResourceRow, *RowError) {
	res := ResourceRow{
		Line:          row.Line,
		Name:          row.Get(ColName),
		Description:   row.Get(ColDescription),
		Brand:         row.Get(ColBrand),
		Reference:     row.Get(ColReference),
		ImageURL:      row.Get(ColImageURL),
		ProductURL:    row.Get(ColProductURL),
		Supplier:      row.Get(ColSupplier),
		CountryOrigin: row.Get(ColCountryOrigin),
		Tags:          SplitList(row.Get(ColTags)),
		Category:      row.Get(ColCategory),
		Parent:        row.Get(ColParent),
		Sub1:          row.Get(ColSub1),
		Sub2:          row.Get(ColSub2),
	}
	if res.Name == "" {
		return res, &RowError{Line: row.Line, Column: ColName, Message: "name is required"}
	}
	var err error
	if res.Price, err = ParsePrice(row.Get(ColPrice)); err != nil {
		return res, &RowError{Line: row.Line, Column: ColPrice, Message: err.Error()}
	}
	if res.PricePro, err = ParsePrice(row.Get(ColPricePro)); err != nil {
		return res, &RowError{Line: row.Line, Column: ColPricePro, Message: err.Error()}
	}
	return res, nil
}

// ParsePrice accepts "1234.5", "1 234,50" and "89,90 €". Blank yields nil.
func ParsePrice(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
	if s == "" {
		return nil, nil
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}
	d = d.Round(2)
	return &d, nil
}

// SplitList splits a multi-value cell on '|', ';' or ',' and drops blanks.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ';' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
