package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dukerupert/kiosk/internal/domain"
)

// Seed file format, one product per record:
//
//	id,category,name,price,stock[,sold]
//
// Price is in decimal dollars. Blank lines, '#' comments, a UTF-8 BOM and
// header rows with a non-numeric first field are all tolerated, matching
// the files the kiosk has historically shipped with. Records with the
// wrong field count are skipped rather than failing the whole import.

// LoadSeedFile reads products from path. A missing file is not an error;
// it returns an empty slice so a fresh kiosk starts with an empty catalog.
func LoadSeedFile(path string) ([]domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	return parseSeed(f)
}

func parseSeed(r io.Reader) ([]domain.Product, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var products []domain.Product
	seen := make(map[int64]bool)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read seed record: %w", err)
		}
		if len(rec) < 5 {
			continue
		}

		idStr := strings.TrimPrefix(strings.TrimSpace(rec[0]), "\uFEFF")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			// Header row or junk first field.
			continue
		}
		if seen[id] {
			continue
		}

		priceCents, err := ParsePriceCents(strings.TrimSpace(rec[3]))
		if err != nil {
			continue
		}
		stock, err := strconv.ParseInt(strings.TrimSpace(rec[4]), 10, 32)
		if err != nil {
			continue
		}

		var sold int64
		if len(rec) >= 6 {
			if v, err := strconv.ParseInt(strings.TrimSpace(rec[5]), 10, 32); err == nil {
				sold = v
			}
		}

		p, err := domain.RehydrateProduct(id, strings.TrimSpace(rec[1]), strings.TrimSpace(rec[2]), priceCents, int32(stock), int32(sold))
		if err != nil {
			continue
		}
		seen[id] = true
		products = append(products, p)
	}
	return products, nil
}

// SaveSeedFile writes the catalog back to path in the seed format,
// including the sold counter so it survives restarts. The write goes
// through a temp file and rename so a crash mid-write cannot truncate
// the previous snapshot.
func SaveSeedFile(path string, products []domain.Product) error {
	tmp, err := os.CreateTemp(dirOf(path), ".kiosk-seed-*")
	if err != nil {
		return fmt.Errorf("failed to create temp seed file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	for _, p := range products {
		rec := []string{
			strconv.FormatInt(p.ID, 10),
			p.Category,
			p.Name,
			FormatPrice(p.PriceCents),
			strconv.FormatInt(int64(p.Stock), 10),
			strconv.FormatInt(int64(p.Sold), 10),
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write seed record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush seed file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close seed file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace seed file: %w", err)
	}
	return nil
}

func dirOf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return "."
}

// ParsePriceCents converts a decimal dollar string ("2.50", "2.5", "3")
// to integer cents without going through floating point.
func ParsePriceCents(s string) (int32, error) {
	neg := strings.HasPrefix(s, "-")
	whole, frac, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("empty price")
	}
	if whole == "" {
		whole = "0"
	}

	dollars, err := strconv.ParseInt(whole, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}

	var cents int64
	switch len(frac) {
	case 0:
	case 1:
		d, err := strconv.ParseInt(frac, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid price %q: %w", s, err)
		}
		cents = d * 10
	case 2:
		d, err := strconv.ParseInt(frac, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid price %q: %w", s, err)
		}
		cents = d
	default:
		return 0, fmt.Errorf("invalid price %q: more than two decimal places", s)
	}

	total := dollars*100 + cents
	if neg {
		total = -total
	}
	return int32(total), nil
}

// FormatPrice renders integer cents as decimal dollars ("250" -> "2.50").
func FormatPrice(cents int32) string {
	return FormatPrice64(int64(cents))
}

// FormatPrice64 is FormatPrice for line and order totals, which can
// exceed the int32 range.
func FormatPrice64(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
