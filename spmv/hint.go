package spmv

// Hint tells a kernel what to expect from the access pattern of x. It only
// changes how work is partitioned across the pool, never the result.
type Hint int

const (
	// HintAuto leaves partitioning to the kernel defaults.
	HintAuto Hint = iota
	// HintTemporal expects x to be revisited often (clustered columns).
	// Kernels cut finer chunks so hot stretches of x stay cache resident.
	HintTemporal
	// HintStreaming expects x to be read once in long strides. Kernels cut
	// coarse chunks to keep per-chunk overhead down.
	HintStreaming
)

// String returns the hint name.
func (h Hint) String() string {
	switch h {
	case HintAuto:
		return "auto"
	case HintTemporal:
		return "temporal"
	case HintStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// rowGrain returns the minimum rows per chunk for row-partitioned kernels.
func (h Hint) rowGrain() int {
	switch h {
	case HintTemporal:
		return 64
	case HintStreaming:
		return 4096
	default:
		return 256
	}
}

// nnzGrain returns the minimum entries per chunk for kernels that
// partition the nonzero stream.
func (h Hint) nnzGrain() int {
	switch h {
	case HintTemporal:
		return 1 << 10
	case HintStreaming:
		return 1 << 16
	default:
		return 1 << 12
	}
}
