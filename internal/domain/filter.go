package domain

// Filter is a named convolution kernel applied to uploaded images.
//
// Weights holds either 9 (3x3) or 25 (5x5) values in row-major order. The
// result of the convolution is divided by the sum of the weights when that
// sum is non-zero, then Bias is added.
type Filter struct {
	Name    string
	Weights []float64
	Bias    int
}

// Size returns the kernel edge length (3 or 5).
func (f Filter) Size() int {
	if len(f.Weights) == 25 {
		return 5
	}
	return 3
}

// Filter names as shown in the upload form.
const (
	FilterBlur        = "blur"
	FilterContour     = "contour"
	FilterDetail      = "detail"
	FilterEdgeEnhance = "edge enhance"
	FilterEmboss      = "emboss"
	FilterSharpen     = "sharpen"
	FilterSmooth      = "smooth"
)

var filters = []Filter{
	{
		Name: FilterBlur,
		Weights: []float64{
			1, 1, 1, 1, 1,
			1, 0, 0, 0, 1,
			1, 0, 0, 0, 1,
			1, 0, 0, 0, 1,
			1, 1, 1, 1, 1,
		},
	},
	{
		Name: FilterContour,
		Weights: []float64{
			-1, -1, -1,
			-1, 8, -1,
			-1, -1, -1,
		},
		Bias: 255,
	},
	{
		Name: FilterDetail,
		Weights: []float64{
			0, -1, 0,
			-1, 10, -1,
			0, -1, 0,
		},
	},
	{
		Name: FilterEdgeEnhance,
		Weights: []float64{
			-1, -1, -1,
			-1, 10, -1,
			-1, -1, -1,
		},
	},
	{
		Name: FilterEmboss,
		Weights: []float64{
			-1, 0, 0,
			0, 1, 0,
			0, 0, 0,
		},
		Bias: 128,
	},
	{
		Name: FilterSharpen,
		Weights: []float64{
			-2, -2, -2,
			-2, 32, -2,
			-2, -2, -2,
		},
	},
	{
		Name: FilterSmooth,
		Weights: []float64{
			1, 1, 1,
			1, 5, 1,
			1, 1, 1,
		},
	},
}

var filtersByName = func() map[string]Filter {
	m := make(map[string]Filter, len(filters))
	for _, f := range filters {
		m[f.Name] = f
	}
	return m
}()

// FilterNames returns the known filter names in display order.
func FilterNames() []string {
	names := make([]string, len(filters))
	for i, f := range filters {
		names[i] = f.Name
	}
	return names
}

// LookupFilter returns the filter registered under name.
func LookupFilter(name string) (Filter, bool) {
	f, ok := filtersByName[name]
	return f, ok
}
