// Package diag defines the diagnostic model shared by every analysis phase.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     semantic analysis (and by the loader/manifest layers around it).
//   - Offer light-weight utilities (Reporter, Bag, Engine) that let producers
//     emit diagnostics without coupling to storage or formatting.
//
// Package diag does no IO. Rendering lives in internal/diagfmt.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning, Error, Fatal (severity.go).
//   - Code – compact numeric identifier (codes.go) with a stable ID such as
//     SEM3007.
//   - Message – short human text.
//   - Primary – the source.Span pointing at the issue.
//   - Notes – optional secondary spans ("declared here").
//
// # Engine
//
// Engine is the sink analysis talks to. Reports are appended in detection
// order and never deduplicated. HasErrorOccurred is a sticky flag: it turns on
// with the first Error or Fatal report and never turns off. Gates that depend
// on "any error so far" must query it rather than infer it from a count.
//
// # Emitting diagnostics
//
// Phases either pass a Diagnostic to Reporter.Report directly or build one with
// ReportError/ReportWarning/ReportFatal, chain WithNote, then Emit.
package diag
