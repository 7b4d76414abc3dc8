package matrix

// ConvertOptions bound the padding the dense-padded formats may spend.
// A conversion to DIA, ELL or HYB is refused when the padded footprint
// exceeds both limits at once; COO, CSR and Dense ignore the options.
type ConvertOptions struct {
	// MaxFill caps the padded slot count at MaxFill times the entry count.
	MaxFill float64

	// FillFloor is a footprint in slots below which conversion always
	// proceeds, whatever the fill ratio. Small matrices are never worth
	// refusing.
	FillFloor int

	// HybCoverage is the fraction of rows the HYB conversion lets
	// overflow into the COO part when choosing the slot width. Zero keeps
	// every row in the ELL part.
	HybCoverage float64
}

// DefaultConvertOptions matches the behavior tuned for wide-row tolerance:
// triple padding allowed, megaslot floor, a third of the rows may overflow.
var DefaultConvertOptions = ConvertOptions{
	MaxFill:     3.0,
	FillFloor:   1 << 20,
	HybCoverage: 1.0 / 3.0,
}

// WithMaxFill overrides the padded-to-stored ratio limit.
func WithMaxFill(f float64) func(*ConvertOptions) {
	return func(o *ConvertOptions) { o.MaxFill = f }
}

// WithFillFloor overrides the always-convert footprint floor.
func WithFillFloor(n int) func(*ConvertOptions) {
	return func(o *ConvertOptions) { o.FillFloor = n }
}

// WithHybCoverage overrides the overflow row fraction for HYB width
// selection.
func WithHybCoverage(f float64) func(*ConvertOptions) {
	return func(o *ConvertOptions) { o.HybCoverage = f }
}

func applyConvertOptions(optFns []func(*ConvertOptions)) ConvertOptions {
	o := DefaultConvertOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
