// # StreamCSV: A Streaming CSV Codec for Go
//
// StreamCSV is a streaming Go library for decoding and encoding RFC-4180-style CSV. The reader is an explicit four-state byte scanner that tolerates common real-world malformations; the writer emits minimally quoted output that the reader recovers exactly, field for field.
//
// # Features
//
// - Streaming reader with custom field and quote separators and one record in memory at a time.
// - Buffered writer with configurable delimiters, a fixed '\n' output convention (CRLF optional), and forced quoting.
// - Typed record emission via `Writer.WriteValues` with scalar auto-stringification and `ErrInvalidFieldType` rejection.
// - Structured error reporting via `ParseError` and `ErrUnterminatedQuote`; opt-in width enforcement with `Reader.FieldsPerRecord`.
// - Optional record reuse (`Reader.ReuseRecord`) for allocation-free scanning of large inputs.
// - Round-trip, fuzz, and comparative benchmark coverage against encoding/csv.
//
// # Getting Started
//
// The module path is `github.com/streamcsv/streamcsv`. The `streamcsv` command under cmd/ provides synthetic data generation, a timing harness, and stream conversion built on the library.
package streamcsv
