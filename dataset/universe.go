package dataset

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/spektr-org/menulens/engine"
	"github.com/spektr-org/menulens/normalize"
)

// LoadUniverseCSV reads a reference universe file with region, city,
// customer type and venue count columns.
func LoadUniverseCSV(path string, n *normalize.Normalizer) ([]engine.MarketUniverseEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open universe %s", path)
	}
	defer f.Close()
	rows, err := ParseCSV(f, 0)
	if err != nil {
		return nil, err
	}
	return UniverseFromRows(rows, n)
}

// LoadUniverse fetches universe rows from any Source.
func LoadUniverse(ctx context.Context, src Source, n *normalize.Normalizer) ([]engine.MarketUniverseEntry, error) {
	rows, err := src.Fetch(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: fetch universe")
	}
	return UniverseFromRows(rows, n)
}

// UniverseFromRows canonicalizes place names with n so they match
// normalized records. Rows for the same slice are summed.
func UniverseFromRows(rows []normalize.RawRow, n *normalize.Normalizer) ([]engine.MarketUniverseEntry, error) {
	if n == nil {
		n = normalize.New()
	}
	index := make(map[[3]string]int)
	var out []engine.MarketUniverseEntry
	for i, raw := range rows {
		row := raw.Fold()
		region, _ := row.String("region", "regione")
		city, _ := row.String("city", "citta", "città")
		channel, _ := row.String("customer_type", "channel", "canale")
		count, ok := row.String("venues", "venue_count", "locali", "total_venues")
		if !ok {
			return nil, eris.Errorf("dataset: universe row %d has no venue count", i+1)
		}
		venues, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || venues < 0 {
			return nil, eris.Errorf("dataset: universe row %d: invalid venue count %q", i+1, count)
		}

		e := engine.MarketUniverseEntry{
			Region:       place(n, normalize.FieldRegion, region, normalize.UnknownRegion),
			City:         place(n, normalize.FieldCity, city, normalize.UnknownCity),
			CustomerType: place(n, normalize.FieldCustomerType, channel, normalize.UnknownChannel),
		}
		key := [3]string{e.Region, e.City, e.CustomerType}
		if j, seen := index[key]; seen {
			out[j].Venues += venues
			continue
		}
		e.Venues = venues
		index[key] = len(out)
		out = append(out, e)
	}
	return out, nil
}

// place canonicalizes like the Normalizer, including its sentinel for gaps.
func place(n *normalize.Normalizer, field, s, fallback string) string {
	if out := n.Text(field, s); out != "" {
		return out
	}
	return fallback
}
