// Package download fetches manifest entries into the installation root in
// fixed-width batches. Batches run one after another; transfers inside a
// batch run concurrently, so at most the batch width is ever in flight.
//
// A 404 skips the entry with a warning, a checksum mismatch after download is
// reported but the file is kept, and any other transport failure aborts the
// run.
package download
