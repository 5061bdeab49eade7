// Package codec implements the MIN file format, a compact binary encoding
// for CSV and line-oriented text.
//
// MIN shrinks tabular data by removing what does not need storing and
// substituting strings that repeat. The result is then passed through a
// general-purpose compressor.
//
// # File Format
//
// A MIN file is an uncompressed 8-byte header followed by a compressed body:
//
//	[Magic(6) "MINFMT"][Version(1)][FileType(1)][Compressed body]
//
// Fields:
//   - Magic: the ASCII bytes "MINFMT"
//   - Version: currently 1; any other value is rejected
//   - FileType: 0x00 for text, 0x01 for CSV
//
// The body, once decompressed, is laid out as:
//
//	[DictSize varint]([Len varint][UTF-8 bytes])*DictSize
//	[RowCount varint][Row]*RowCount
//
// A text row is a single field. A CSV row is a varint column count followed
// by that many fields. Each field starts with a flag byte:
//
//	0xFF [Index varint]               dictionary reference
//	0x00 [Len varint][UTF-8 bytes]    raw string
//
// # Varints
//
// Integers are unsigned varints: 7 bits per byte, least significant group
// first, high bit set on every byte but the last. At most 5 bytes are used,
// so the largest value is 2^35-1.
//
// # Preprocessing
//
// Before encoding, rows are canonicalized in a fixed order:
//  1. leading and trailing whitespace is stripped from every field or line
//  2. rows left empty are dropped
//  3. repeated rows are dropped, keeping the first occurrence
//  4. for CSV, columns that are empty in every row are dropped
//
// # Dictionary
//
// Every non-empty field value occurring at least twice in the canonical rows
// becomes a dictionary entry. Entries are ordered by descending count; equal
// counts keep the order in which values reached their second occurrence.
// This tie-break is deliberate and differs from ordering ties by first
// occurrence, as a most-common counter would: given the rows
// [Name Age City] [John 25 NYC] [Jane 30 NYC] [Bob 25 LA] it yields
// [NYC 25], where first occurrence would yield [25 NYC]. Other encoders
// must use the same rule to produce identical bytes.
//
// Decoders never rebuild the dictionary, they read it from the body.
//
// # Usage
//
//	c := codec.NewDocumentCodec()
//
//	data, stats, err := c.Encode(codec.FileTypeCSV, codec.CSVRows(records))
//	if err != nil {
//	    return err
//	}
//
//	doc, err := c.Decode(data)
//	if err != nil {
//	    return err
//	}
//
// # Error Handling
//
// Decode failures are terminal; there is no partial recovery. Errors wrap
// one of ErrFormat, ErrRange, ErrMalformedVarint, ErrTruncatedInput,
// ErrInvalidEncoding, ErrInvalidReference or ErrInvalidFlag, and carry the
// byte offset through *Error.
//
// # Thread Safety
//
// DocumentCodec holds only configuration and is safe for concurrent use.
// Each call builds its own Document and Dictionary.
package codec
