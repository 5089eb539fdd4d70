// Package dataprocessing turns raw source rows into the windowed energy summary.
//
// # Components
//
//  1. Normalizer: maps a RawRow onto a YearRecord through a FieldMapping. It
//     never fails; a field that does not parse becomes absent.
//  2. Builder: orders records newest first, keeps the last N years and derives
//     the renewable / non-renewable share of total generation.
//
// # Data Flow
//
//	RowSource → RawRow → Normalizer → YearRecord → Builder → Summary
//
// # Absent values
//
// Absent is distinct from zero everywhere except the renewable sum, where
// missing sources count as zero. Division by a zero or absent total yields an
// absent share rather than an error.
package dataprocessing
