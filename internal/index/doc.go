// Package index implements in-memory nearest-neighbour indexes over
// embedding snapshots. Two structures are provided: an exact brute-force
// flat index for small corpora and an inverted-file (IVF) index that
// clusters vectors with k-means and probes only the nearest clusters at
// query time. The builder picks between them by corpus size.
package index
