package predictor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Catalog holds the dropdown values derived from the cleaned car dataset.
// It is built once and never mutated, so it is safe to share.
type Catalog struct {
	companies []string
	fuelTypes []string
	years     []int
	models    map[string][]string
}

// EmptyCatalog returns a catalog with no entries.
func EmptyCatalog() *Catalog {
	return &Catalog{models: map[string][]string{}}
}

// LoadCatalog reads the dataset CSV at path.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return ReadCatalog(f)
}

// ReadCatalog parses a dataset with a header row containing at least the
// name, company, year and fuel_type columns.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"name", "company", "year", "fuel_type"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("dataset is missing column %q", required)
		}
	}

	companies := map[string]struct{}{}
	fuelTypes := map[string]struct{}{}
	years := map[int]struct{}{}
	models := map[string]map[string]struct{}{}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}

		field := func(name string) string {
			if i := col[name]; i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		company, name := field("company"), field("name")
		if company == "" || name == "" {
			continue
		}

		companies[company] = struct{}{}
		if models[company] == nil {
			models[company] = map[string]struct{}{}
		}
		models[company][name] = struct{}{}

		if fuel := field("fuel_type"); fuel != "" {
			fuelTypes[fuel] = struct{}{}
		}
		if year, err := strconv.Atoi(field("year")); err == nil {
			years[year] = struct{}{}
		}
	}

	c := &Catalog{
		companies: sortedKeys(companies),
		fuelTypes: sortedKeys(fuelTypes),
		models:    make(map[string][]string, len(models)),
	}
	for year := range years {
		c.years = append(c.years, year)
	}
	sort.Ints(c.years)
	for company, names := range models {
		c.models[company] = sortedKeys(names)
	}

	return c, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Companies returns every company, sorted.
func (c *Catalog) Companies() []string {
	return append([]string(nil), c.companies...)
}

// FuelTypes returns every fuel type, sorted.
func (c *Catalog) FuelTypes() []string {
	return append([]string(nil), c.fuelTypes...)
}

// Years returns every model year in the dataset, ascending.
func (c *Catalog) Years() []int {
	return append([]int(nil), c.years...)
}

// Models returns the sorted model names for company, or an empty slice for
// an unknown company.
func (c *Catalog) Models(company string) []string {
	return append([]string{}, c.models[company]...)
}
