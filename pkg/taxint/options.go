package taxint

type options struct {
	cap         int
	minCoverage float64
	rootID      int64
}

// Option configures a Classifier.
type Option func(*options)

// WithCap sets the maximum number of distinct taxa considered per read,
// which is also the denominator of the diversity score. Default: 100.
func WithCap(n int) Option {
	return func(o *options) {
		o.cap = n
	}
}

// WithMinCoverage sets the coverage gate in percent of read length: reads
// whose top hit spans less are skipped. Default: 95.
func WithMinCoverage(pct float64) Option {
	return func(o *options) {
		o.minCoverage = pct
	}
}

// WithRootID sets the root taxon of the reference taxonomy. Default: 1.
func WithRootID(id int64) Option {
	return func(o *options) {
		o.rootID = id
	}
}

func defaultOptions() options {
	return options{
		cap:         100,
		minCoverage: 95,
		rootID:      1,
	}
}
