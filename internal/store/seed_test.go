package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukerupert/kiosk/internal/domain"
)

func TestParseSeed(t *testing.T) {
	input := strings.Join([]string{
		"\uFEFFid,category,name,price,stock",
		"# weekly delivery 2026-08-31",
		"1,drinks,Cold Brew,4.50,10",
		"",
		"2,food,Everything Bagel,2.75,6,12",
		"2,food,Duplicate Bagel,9.99,1",
		"not,a,valid,row",
		"3,food,Croissant,3.255,4",
		"4,food,Muffin,3.25,-2",
		"5,drinks,Latte,5,8",
	}, "\n")

	products, err := parseSeed(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, products, 3, "header, comment, blank, duplicate and bad rows are skipped")

	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, int32(450), products[0].PriceCents)
	assert.Equal(t, int32(0), products[0].Sold)

	assert.Equal(t, int64(2), products[1].ID)
	assert.Equal(t, "Everything Bagel", products[1].Name, "first record wins on duplicate ids")
	assert.Equal(t, int32(12), products[1].Sold, "optional sixth field restores the sold counter")

	assert.Equal(t, int64(5), products[2].ID)
	assert.Equal(t, int32(500), products[2].PriceCents, "whole-dollar prices parse")
}

func TestLoadSeedFile_MissingFileIsEmptyCatalog(t *testing.T) {
	products, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.NoError(t, err)
	assert.Empty(t, products)
}

func TestSaveAndLoadSeedFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")

	p, err := domain.RehydrateProduct(1, "drinks", "Cold Brew", 450, 7, 3)
	assert.NoError(t, err)

	assert.NoError(t, SaveSeedFile(path, []domain.Product{p}))

	loaded, err := LoadSeedFile(path)
	assert.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.Equal(t, p, loaded[0])
}

func TestSaveSeedFile_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.txt")
	assert.NoError(t, os.WriteFile(path, []byte("1,drinks,Old,1.00,1\n"), 0o644))

	p, err := domain.NewProduct(2, "food", "New", 200, 2)
	assert.NoError(t, err)
	assert.NoError(t, SaveSeedFile(path, []domain.Product{p}))

	loaded, err := LoadSeedFile(path)
	assert.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.Equal(t, int64(2), loaded[0].ID)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParsePriceCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int32
		wantErr bool
	}{
		{in: "2.50", want: 250},
		{in: "2.5", want: 250},
		{in: "3", want: 300},
		{in: "0.05", want: 5},
		{in: ".75", want: 75},
		{in: "-1.25", want: -125},
		{in: "2.505", wantErr: true},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriceCents(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "2.50", FormatPrice(250))
	assert.Equal(t, "0.05", FormatPrice(5))
	assert.Equal(t, "12.00", FormatPrice(1200))
	assert.Equal(t, "-1.25", FormatPrice(-125))
	assert.Equal(t, "21474836.48", FormatPrice64(2147483648))
}
