package spatial

import "log/slog"

// DefaultSubsampleThreshold is the point count above which a ProximityIndex
// samples its input.
const DefaultSubsampleThreshold = 100_000

type proximityOptions struct {
	threshold int
	logger    *slog.Logger
}

// ProximityOption configures a ProximityIndex.
type ProximityOption func(*proximityOptions)

// WithSubsampleThreshold sets the maximum number of indexed points.
// Values <= 0 select DefaultSubsampleThreshold.
func WithSubsampleThreshold(n int) ProximityOption {
	return func(o *proximityOptions) {
		if n > 0 {
			o.threshold = n
		}
	}
}

// WithLogger sets the logger used to report subsampling.
func WithLogger(l *slog.Logger) ProximityOption {
	return func(o *proximityOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// ProximityIndex answers "is anything near here" over a catalog that may be
// too large to index in full. Inputs above the subsample threshold are
// sampled at evenly spaced positions i*n/threshold, which keeps exactly
// threshold points and trades recall for bounded build and query cost.
type ProximityIndex struct {
	idx       *Index
	sourceLen int
	sources   []int // source position of each indexed point; nil when not subsampled
}

// NewProximityIndex builds a proximity index over lons and lats.
func NewProximityIndex(lons, lats []float64, opts ...ProximityOption) (*ProximityIndex, error) {
	if err := checkLengths(lons, lats); err != nil {
		return nil, err
	}

	o := proximityOptions{
		threshold: DefaultSubsampleThreshold,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	n := len(lons)
	sampledLons, sampledLats := lons, lats
	var sources []int
	if n > o.threshold {
		sources = evenSample(n, o.threshold)
		sampledLons = make([]float64, len(sources))
		sampledLats = make([]float64, len(sources))
		for j, src := range sources {
			sampledLons[j] = lons[src]
			sampledLats[j] = lats[src]
		}
		o.logger.Info("subsampled proximity index",
			"points", n, "indexed", len(sources), "stride", float64(n)/float64(o.threshold), "threshold", o.threshold)
	}

	idx, err := NewIndex(sampledLons, sampledLats)
	if err != nil {
		return nil, err
	}
	return &ProximityIndex{idx: idx, sourceLen: n, sources: sources}, nil
}

// evenSample returns m strictly increasing positions in [0, n), spaced n/m
// apart and starting at 0. It requires 0 < m <= n.
func evenSample(n, m int) []int {
	out := make([]int, m)
	for i := range out {
		out[i] = int(int64(i) * int64(n) / int64(m))
	}
	return out
}

// Index returns the underlying spatial index over the indexed points.
func (p *ProximityIndex) Index() *Index { return p.idx }

// Len returns the number of indexed points.
func (p *ProximityIndex) Len() int { return p.idx.Len() }

// SourceLen returns the number of points before subsampling.
func (p *ProximityIndex) SourceLen() int { return p.sourceLen }

// Subsampled reports whether the input was sampled down.
func (p *ProximityIndex) Subsampled() bool { return p.sources != nil }

// Stride returns the mean spacing between indexed source points; 1 when
// every point is indexed.
func (p *ProximityIndex) Stride() float64 {
	if p.sources == nil {
		return 1
	}
	return float64(p.sourceLen) / float64(len(p.sources))
}

// SubsampleRatio returns the indexed share of the input, in (0, 1].
func (p *ProximityIndex) SubsampleRatio() float64 {
	if p.sourceLen == 0 {
		return 1
	}
	return float64(p.idx.Len()) / float64(p.sourceLen)
}

// SourceIndex maps an index into the indexed points back to the input.
func (p *ProximityIndex) SourceIndex(i int) int {
	if p.sources == nil {
		return i
	}
	return p.sources[i]
}

// CheckProximityBatch reports, per input point, whether at least one indexed
// point lies within radiusDeg of it.
func (p *ProximityIndex) CheckProximityBatch(lons, lats []float64, radiusDeg float64) ([]bool, error) {
	if err := checkLengths(lons, lats); err != nil {
		return nil, err
	}
	out := make([]bool, len(lons))
	for i := range lons {
		out[i] = p.idx.HasNeighbor(lons[i], lats[i], radiusDeg)
	}
	return out, nil
}

// CheckProximitySingle is CheckProximityBatch for one point.
func (p *ProximityIndex) CheckProximitySingle(lon, lat, radiusDeg float64) bool {
	return p.idx.HasNeighbor(lon, lat, radiusDeg)
}
