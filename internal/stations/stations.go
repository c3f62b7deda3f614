// Package stations loads the INMET automatic weather station catalogue used
// to drive per-station downloads.
//
// The catalogue is the CSV published by INMET (columns CD_ESTACAO, DC_NOME,
// SG_ESTADO, VL_LATITUDE, VL_LONGITUDE); a companion coastal.csv lists
// station codes to exclude, since coastal cells mix land and ocean data.
package stations

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Station is one automatic weather station.
type Station struct {
	Code      string
	Name      string
	State     string
	Latitude  float64
	Longitude float64
}

// Catalogue holds the full station set plus the coastal exclusion list.
type Catalogue struct {
	Stations []Station
	coastal  map[string]struct{}
}

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName strips diacritics and upper-cases a station name so lookups
// and log lines do not depend on accent variants ("Brasília" vs "Brasilia").
func NormalizeName(name string) string {
	out, _, err := transform.String(deaccent, name)
	if err != nil {
		out = name
	}
	return strings.ToUpper(strings.TrimSpace(out))
}

// Load reads metadata/catalogue.csv and metadata/coastal.csv under baseDir.
// A missing coastal file is not an error; no stations are excluded then.
func Load(baseDir string) (*Catalogue, error) {
	catPath := filepath.Join(baseDir, "metadata", "catalogue.csv")
	f, err := os.Open(catPath)
	if err != nil {
		return nil, fmt.Errorf("opening catalogue: %w", err)
	}
	defer f.Close()

	cat, err := parseCatalogue(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", catPath, err)
	}

	coastalPath := filepath.Join(baseDir, "metadata", "coastal.csv")
	cf, err := os.Open(coastalPath)
	if err == nil {
		defer cf.Close()
		cat.coastal, err = parseCoastal(cf)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", coastalPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("opening coastal list: %w", err)
	}

	return cat, nil
}

func parseCatalogue(r io.Reader) (*Catalogue, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, want := range []string{"CD_ESTACAO", "DC_NOME", "SG_ESTADO", "VL_LATITUDE", "VL_LONGITUDE"} {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("catalogue missing column %s", want)
		}
	}

	cat := &Catalogue{coastal: map[string]struct{}{}}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		lat, err := strconv.ParseFloat(strings.ReplaceAll(record[col["VL_LATITUDE"]], ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("station %s: bad latitude: %w", record[col["CD_ESTACAO"]], err)
		}
		lon, err := strconv.ParseFloat(strings.ReplaceAll(record[col["VL_LONGITUDE"]], ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("station %s: bad longitude: %w", record[col["CD_ESTACAO"]], err)
		}

		cat.Stations = append(cat.Stations, Station{
			Code:      strings.TrimSpace(record[col["CD_ESTACAO"]]),
			Name:      NormalizeName(record[col["DC_NOME"]]),
			State:     strings.TrimSpace(record[col["SG_ESTADO"]]),
			Latitude:  lat,
			Longitude: lon,
		})
	}

	return cat, nil
}

func parseCoastal(r io.Reader) (map[string]struct{}, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	codeCol := -1
	for i, name := range header {
		if strings.TrimSpace(name) == "CD_ESTACAO" {
			codeCol = i
		}
	}
	if codeCol < 0 {
		return nil, fmt.Errorf("coastal list missing CD_ESTACAO column")
	}

	coastal := map[string]struct{}{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		coastal[strings.TrimSpace(record[codeCol])] = struct{}{}
	}
	return coastal, nil
}

// IsCoastal reports whether a station code is on the exclusion list.
func (c *Catalogue) IsCoastal(code string) bool {
	_, ok := c.coastal[code]
	return ok
}

// Eligible returns inland stations whose state is in validStates, preserving
// catalogue order.
func (c *Catalogue) Eligible(validStates []string) []Station {
	valid := make(map[string]struct{}, len(validStates))
	for _, s := range validStates {
		valid[s] = struct{}{}
	}

	var out []Station
	for _, st := range c.Stations {
		if _, ok := valid[st.State]; !ok {
			continue
		}
		if c.IsCoastal(st.Code) {
			continue
		}
		out = append(out, st)
	}
	return out
}

// StateOf returns the state for a station code, or "" when unknown.
func (c *Catalogue) StateOf(code string) string {
	for _, st := range c.Stations {
		if st.Code == code {
			return st.State
		}
	}
	return ""
}
