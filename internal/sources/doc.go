// Package sources streams raw energy rows for one entity from a remote or
// local dataset.
//
// Every source implements RowSource. Rows are handed to the callback as they
// are decoded, so the full upstream file is never held in memory. Transport
// failures come back as NETWORK AppErrors wrapping the cause; an error
// returned by the callback is passed through unchanged.
package sources
