package index

// squaredL2 returns the squared Euclidean distance between two vectors
// of equal length. Distances throughout this package are squared L2;
// ranking is unaffected and the sqrt is never needed.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
