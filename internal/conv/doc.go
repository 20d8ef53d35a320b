// Package conv provides checked conversions between int and uint32.
//
// Segment bitmaps address samples with 32-bit indices; these helpers reject
// row counts that would not fit instead of silently wrapping.
package conv
