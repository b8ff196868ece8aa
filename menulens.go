// Package menulens is menu intelligence for the Italian on-trade.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/menulens/dataset"
//	    "github.com/spektr-org/menulens/engine"
//	)
//
//	records, err := dataset.NewLoader(dataset.CSVSource{Path: "listings.csv"}).Load(ctx)
//	d := engine.Analyze(records, nil, engine.Query{
//	    Time:       engine.TimeSelection{Mode: engine.TimeYoY, Primary: engine.Period{Year: 2024}},
//	    FocusOwner: "Campari Group",
//	})
//
// The normalize package turns raw venue/menu rows into canonical
// engine.ListingRecord values. The engine derives every dashboard view from
// those records alone; it never calls an external service.
//
// The report package shapes engine results into chart and table payloads,
// export writes CSV and Excel files, and server exposes it all over HTTP.
package menulens
