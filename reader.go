package streamcsv

import (
	"errors"
	"fmt"
	"io"
	"unsafe"
)

const defaultBufferSize = 1 << 10 // 1024 bytes

var (
	// ErrUnterminatedQuote is returned when a quoted field is not closed before end of stream.
	ErrUnterminatedQuote = errors.New("streamcsv: unterminated quoted field")
	// ErrFieldCount is returned when FieldsPerRecord is set and a record has a different width.
	ErrFieldCount = errors.New("streamcsv: wrong number of fields")
)

// ParseError contains location information for CSV parsing errors.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("streamcsv: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Unwrap.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// parseState enumerates the scanner states. The reader is a per-byte state
// machine: every byte of input is dispatched on exactly one of these states.
type parseState uint8

const (
	// stateFieldStart is the position before the first byte of a field. A
	// quote byte here opens a quoted field; anything else belongs to an
	// unquoted field.
	stateFieldStart parseState = iota
	// stateUnquoted accumulates bytes of an unquoted field until a delimiter
	// or record terminator.
	stateUnquoted
	// stateQuoted accumulates bytes verbatim inside a quoted field, including
	// delimiters and newlines.
	stateQuoted
	// stateQuoteInQuoted is the one-byte lookahead after a quote inside a
	// quoted field: a second quote is an escaped literal quote, anything else
	// means the field was closed.
	stateQuoteInQuoted
)

// Reader decodes CSV records from a byte stream with support for customizable delimiters.
type Reader struct {
	src io.Reader

	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// ReuseRecord indicates whether Read should reuse the backing array of the returned slice.
	ReuseRecord bool
	// FieldsPerRecord, when positive, requires every record to have exactly
	// that many fields. When zero or negative, records may vary in width.
	FieldsPerRecord int

	buf    []byte
	bufPos int
	bufLen int
	bufErr error

	record      []string
	dataBuf     []byte
	fieldBounds []int
	finished    bool
	line        int
}

// NewReader creates a Reader that consumes CSV data from r, panicking if r is nil,
// and initialises internal buffers sized for streaming decode. It returns
// a pointer to the configured Reader.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		panic("streamcsv: reader source cannot be nil")
	}

	return &Reader{
		src:         r,
		Comma:       ',',
		Quote:       '"',
		buf:         make([]byte, defaultBufferSize),
		record:      make([]string, 0, 16),
		dataBuf:     make([]byte, 0, 512),
		fieldBounds: make([]int, 0, 32),
		line:        1,
	}
}

// Read parses the next CSV record from the underlying stream. It returns dst containing
// the field values (which may reuse internal storage when ReuseRecord is true) and an err
// indicating success or failure; io.EOF signals that no more records remain.
//
// A quote byte in the interior of an unquoted field is taken literally, and a
// stray byte following the closing quote of a quoted field is appended to the
// field with scanning continuing unquoted. An empty line decodes to a record
// holding a single empty field. Only an unclosed quoted field at end of
// stream is a parse error.
func (r *Reader) Read() (dst []string, err error) {
	if r == nil || r.src == nil {
		return nil, io.EOF
	}
	if r.finished {
		return nil, io.EOF
	}

	comma := r.Comma
	if comma == 0 {
		comma = ','
	}
	quote := r.Quote
	if quote == 0 {
		quote = '"'
	}

	// Reset state for assembling the next record, reusing slices when allowed.
	if r.ReuseRecord {
		r.record = r.record[:0]
	} else {
		r.record = nil
	}
	r.dataBuf = r.dataBuf[:0]
	r.fieldBounds = r.fieldBounds[:0]

	state := stateFieldStart
	column := 1
	fieldStart := 0

	closeField := func() {
		r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
		fieldStart = len(r.dataBuf)
	}
	// closeRecord consumes the '\n' of a CRLF pair when term is '\r'.
	closeRecord := func(term byte) error {
		if term == '\r' {
			next, err := r.peekByte()
			if err == nil && next == '\n' {
				r.bufPos++
			}
			if err != nil && err != io.EOF {
				return err
			}
		}
		closeField()
		r.line++
		return nil
	}

	for {
		b, err := r.nextByte()
		if err == io.EOF {
			r.finished = true
			switch state {
			case stateQuoted:
				return nil, r.wrapError(column, ErrUnterminatedQuote)
			case stateQuoteInQuoted, stateUnquoted:
				// Stream ended without a terminator; the trailing field still counts.
				closeField()
				return r.buildRecord()
			default:
				if len(r.fieldBounds) > 0 {
					// A trailing delimiter leaves one empty field pending.
					closeField()
					return r.buildRecord()
				}
				return nil, io.EOF
			}
		}
		if err != nil {
			return nil, err
		}

		column++

		switch state {
		case stateFieldStart:
			switch b {
			case quote:
				state = stateQuoted
			case comma:
				closeField()
			case '\n', '\r':
				if err := closeRecord(b); err != nil {
					return nil, err
				}
				return r.buildRecord()
			default:
				r.dataBuf = append(r.dataBuf, b)
				state = stateUnquoted
			}

		case stateUnquoted:
			switch b {
			case comma:
				closeField()
				state = stateFieldStart
			case '\n', '\r':
				if err := closeRecord(b); err != nil {
					return nil, err
				}
				return r.buildRecord()
			default:
				// Includes a bare quote byte, which is literal outside quoting.
				r.dataBuf = append(r.dataBuf, b)
			}

		case stateQuoted:
			switch b {
			case quote:
				state = stateQuoteInQuoted
			case '\n':
				// Track logical line numbers for embedded newlines.
				r.dataBuf = append(r.dataBuf, b)
				r.line++
				column = 1
			default:
				r.dataBuf = append(r.dataBuf, b)
			}

		case stateQuoteInQuoted:
			switch b {
			case quote:
				// Doubled quote is an escaped literal quote.
				r.dataBuf = append(r.dataBuf, quote)
				state = stateQuoted
			case comma:
				closeField()
				state = stateFieldStart
			case '\n', '\r':
				if err := closeRecord(b); err != nil {
					return nil, err
				}
				return r.buildRecord()
			default:
				// Stray byte after a closing quote: tolerated, the field
				// continues unquoted.
				r.dataBuf = append(r.dataBuf, b)
				state = stateUnquoted
			}
		}
	}
}

// ReadAll exhausts the reader, repeatedly calling Read to collect records until io.EOF
// and returning the accumulated records slice plus the first non-EOF error encountered.
func (r *Reader) ReadAll() (records [][]string, err error) {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// buildRecord maps the accumulated fieldBounds onto the data buffer, respecting ReuseRecord,
// and returns the materialised []string representing the current record.
func (r *Reader) buildRecord() ([]string, error) {
	fieldCount := len(r.fieldBounds) / 2

	var recordStr string
	if r.ReuseRecord {
		if len(r.dataBuf) == 0 {
			recordStr = ""
		} else {
			// Zero-copy string construction so fields can share a single backing buffer.
			recordStr = unsafe.String(unsafe.SliceData(r.dataBuf), len(r.dataBuf))
		}
		if cap(r.record) < fieldCount {
			r.record = make([]string, fieldCount)
		}
		r.record = r.record[:fieldCount]
	} else {
		recordStr = string(r.dataBuf)
		r.record = make([]string, fieldCount)
	}

	for i := 0; i < fieldCount; i++ {
		start := r.fieldBounds[2*i]
		end := r.fieldBounds[2*i+1]
		r.record[i] = recordStr[start:end]
	}

	if r.FieldsPerRecord > 0 && len(r.record) != r.FieldsPerRecord {
		return r.record, ErrFieldCount
	}
	return r.record, nil
}

// wrapError attaches the current line and supplied column to err, producing a *ParseError.
func (r *Reader) wrapError(column int, err error) error {
	return &ParseError{Line: r.line, Column: column, Err: err}
}

// nextByte returns the next byte of input, refilling the working buffer from
// src as needed. Read errors from src are sticky.
func (r *Reader) nextByte() (byte, error) {
	for {
		if r.bufPos < r.bufLen {
			b := r.buf[r.bufPos]
			r.bufPos++
			return b, nil
		}
		if r.bufErr != nil {
			return 0, r.bufErr
		}

		n, err := r.src.Read(r.buf)
		if n == 0 && err != nil {
			r.bufErr = err
			return 0, err
		}
		if n == 0 {
			continue
		}
		r.bufPos = 0
		r.bufLen = n
		r.bufErr = err
	}
}

// peekByte returns the next buffered byte (refilling from src as needed) and propagates any read error.
func (r *Reader) peekByte() (byte, error) {
	for {
		if r.bufPos < r.bufLen {
			return r.buf[r.bufPos], nil
		}
		if r.bufErr != nil {
			return 0, r.bufErr
		}

		n, err := r.src.Read(r.buf)
		if n == 0 && err != nil {
			return 0, err
		}
		if n == 0 {
			continue
		}
		r.bufPos = 0
		r.bufLen = n
		r.bufErr = err
	}
}
