package aec3

// ComputeERL implements the Echo Return Loss invariant: the ERL of a
// partitioned-block adaptive filter is the elementwise sum, across
// partitions, of each partition's squared-magnitude spectrum. Ported
// exactly from original_source/crates/sonora-aec3/src/adaptive_fir_filter_erl.rs.
func ComputeERL(h2 [][]float32, erl []float32) {
	for i := range erl {
		erl[i] = 0
	}
	for _, partition := range h2 {
		n := len(erl)
		if len(partition) < n {
			n = len(partition)
		}
		for k := 0; k < n; k++ {
			erl[k] += partition[k]
		}
	}
}
