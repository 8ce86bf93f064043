// Package core explodes the typed values of one column of a TSV stream.
//
// The package holds the domain logic only. Reading and writing rows is
// done through the [RowReader] and [RowWriter] interfaces, so the same
// pipeline serves the command line, the HTTP service and tests.
//
// # Architecture
//
//   - Schema: [NewSchema] indexes the input header; [BuildExplosion]
//     validates a [Request] and extends the schema with exploded columns.
//   - Exploder: [Explode] turns one input row into zero or more output rows.
//   - Pipeline: [Pipeline.Run] streams rows from reader to writer, one at a
//     time, and returns a [Result].
//
// # Example
//
//	p := &core.Pipeline{
//	    Request: core.Request{
//	        Column: "node2",
//	        Fields: []string{"data_type", "symbol"},
//	        Prefix: "node2;",
//	    },
//	    OpenReader: openInput,
//	    OpenWriter: openOutput,
//	}
//	res, err := p.Run(ctx)
//
// # Error Handling
//
// Configuration problems are reported as [*ConfigError] before any output
// is opened. A value that fails validation is not an error: the row is
// passed through unchanged and counted in [Result.InvalidRows]. Technical
// errors are mapped to user-friendly messages using [MapError]:
//
//   - CFG001-CFG007: configuration errors
//   - ROW001: per-row failures
//   - FILE001-FILE004: input and output files
//   - REQ001-REQ006: cancellation, timeouts and HTTP request limits
package core
