// Package launchboard is a dashboard engine for SpaceX launch records.
//
// Usage:
//
//	import "github.com/spektr-org/launchboard/engine"
//
//	g := engine.NewGraph(table, engine.WithRangeCeiling(10000))
//	g.SetSite("KSC LC-39A")
//	g.SetPayloadRange(engine.PayloadRange{Low: 0, High: 5000})
//	state := g.Snapshot()
//
// The graph holds two signals (site, payloadRange) and two outputs: the
// success pie, which depends on site only, and the payload scatter, which
// depends on both. Every signal update recomputes exactly the outputs that
// depend on it.
//
// The dataset package loads the launch table from CSV, XLSX, SQLite or
// Postgres; server exposes one graph per session over HTTP; render draws
// chart specs as PNG. The engine itself does no I/O.
package launchboard
