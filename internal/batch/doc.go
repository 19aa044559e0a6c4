// Package batch drives the pipeline over many documents.
//
// Runner collects documents (by default .tif and .tiff files), scans them
// one at a time in sorted order and renames each according to its outcome:
// "<code>_verified.tif" on success and "<name>_needs-review.tif" otherwise.
// Renames never overwrite; a numeric suffix is added on collision.
// Documents already set aside for review are skipped.
//
// Cancellation takes effect between documents. Watch keeps a runner going
// over a drop folder.
package batch
