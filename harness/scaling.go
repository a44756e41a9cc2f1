package harness

// Scaling returns multi/single. A value near the thread count is linear
// scaling; anything well below it points at a shared bottleneck. It returns
// 0 when single is not positive.
func Scaling(single, multi float64) float64 {
	if single <= 0 {
		return 0
	}

	return multi / single
}
