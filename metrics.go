package rtos

import "math"

// Metrics tracks optional runtime statistics when a Scheduler is
// constructed with WithMetrics(true): context-switch latency (time spent
// inside Scheduler.jump picking and handing off to the next thread) and,
// per Queue, occupancy percentiles. The underlying estimator is the
// P-Square streaming quantile algorithm (Jain & Chlamtac, 1985), grounded
// on the teacher's own psquare.go — the same shape of problem (cheap
// streaming percentiles without retaining samples) recurs here for
// scheduling jitter instead of event-loop task latency.
//
// Not safe for concurrent use from multiple goroutines; callers only ever
// touch it from within the kernel's own critical section.
type Metrics struct {
	switchLatency *pSquareMultiQuantile
}

// NewMetrics constructs a Metrics tracking p50/p99 context-switch latency
// in nanoseconds.
func NewMetrics() *Metrics {
	return &Metrics{
		switchLatency: newPSquareMultiQuantile(0.50, 0.99),
	}
}

func (m *Metrics) recordSwitch(nanos float64) {
	if m == nil {
		return
	}
	m.switchLatency.Update(nanos)
}

// ContextSwitches returns the number of context switches recorded.
func (m *Metrics) ContextSwitches() int {
	if m == nil {
		return 0
	}
	return m.switchLatency.Count()
}

// SwitchLatencyP50 returns the estimated median context-switch latency, in
// nanoseconds.
func (m *Metrics) SwitchLatencyP50() float64 {
	if m == nil {
		return 0
	}
	return m.switchLatency.Quantile(0)
}

// SwitchLatencyP99 returns the estimated 99th-percentile context-switch
// latency, in nanoseconds.
func (m *Metrics) SwitchLatencyP99() float64 {
	if m == nil {
		return 0
	}
	return m.switchLatency.Quantile(1)
}

// SwitchLatencyMax returns the maximum observed context-switch latency, in
// nanoseconds.
func (m *Metrics) SwitchLatencyMax() float64 {
	if m == nil {
		return 0
	}
	return m.switchLatency.Max()
}

// QueueMetrics tracks per-queue occupancy percentiles, sampled on every
// put and get, when the owning Scheduler has metrics enabled.
type QueueMetrics struct {
	depth *pSquareMultiQuantile
}

func newQueueMetrics() *QueueMetrics {
	return &QueueMetrics{depth: newPSquareMultiQuantile(0.50, 0.99)}
}

func (m *QueueMetrics) recordDepth(n int) {
	if m == nil {
		return
	}
	m.depth.Update(float64(n))
}

// DepthP50 returns the estimated median queue occupancy.
func (m *QueueMetrics) DepthP50() float64 {
	if m == nil {
		return 0
	}
	return m.depth.Quantile(0)
}

// DepthP99 returns the estimated 99th-percentile queue occupancy.
func (m *QueueMetrics) DepthP99() float64 {
	if m == nil {
		return 0
	}
	return m.depth.Quantile(1)
}

// pSquareQuantile implements the P-Square algorithm for streaming quantile
// estimation: O(1) per-observation updates and O(1) quantile retrieval,
// without retaining the observations themselves.
//
// Reference: Jain, R. and Chlamtac, I. (1985). "The P^2 Algorithm for
// Dynamic Calculation of Quantiles and Histograms Without Storing
// Observations". Communications of the ACM, 28(10), pp. 1076-1085.
//
// Not thread-safe; callers must synchronize externally.
type pSquareQuantile struct {
	p          float64
	q          [5]float64
	n          [5]int
	np         [5]float64
	dn         [5]float64
	count      int
	initBuffer [5]float64
}

func newPSquareQuantile(p float64) *pSquareQuantile {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return &pSquareQuantile{
		p:  p,
		dn: [5]float64{0, p / 2, p, (1 + p) / 2, 1},
	}
}

func (ps *pSquareQuantile) Update(x float64) {
	ps.count++
	if ps.count <= 5 {
		ps.initBuffer[ps.count-1] = x
		if ps.count == 5 {
			ps.initialize()
		}
		return
	}

	var k int
	if x < ps.q[0] {
		ps.q[0] = x
		k = 0
	} else if x >= ps.q[4] {
		ps.q[4] = x
		k = 3
	} else {
		for k = 0; k < 4; k++ {
			if ps.q[k] <= x && x < ps.q[k+1] {
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		ps.n[i]++
	}
	for i := 0; i < 5; i++ {
		ps.np[i] += ps.dn[i]
	}
	for i := 1; i < 4; i++ {
		d := ps.np[i] - float64(ps.n[i])
		if (d >= 1 && ps.n[i+1]-ps.n[i] > 1) || (d <= -1 && ps.n[i-1]-ps.n[i] < -1) {
			sign := 1
			if d < 0 {
				sign = -1
			}
			qPrime := ps.parabolic(i, sign)
			if ps.q[i-1] < qPrime && qPrime < ps.q[i+1] {
				ps.q[i] = qPrime
			} else {
				ps.q[i] = ps.linear(i, sign)
			}
			ps.n[i] += sign
		}
	}
}

func (ps *pSquareQuantile) initialize() {
	for i := 1; i < 5; i++ {
		key := ps.initBuffer[i]
		j := i - 1
		for j >= 0 && ps.initBuffer[j] > key {
			ps.initBuffer[j+1] = ps.initBuffer[j]
			j--
		}
		ps.initBuffer[j+1] = key
	}
	for i := 0; i < 5; i++ {
		ps.q[i] = ps.initBuffer[i]
		ps.n[i] = i
	}
	ps.np = [5]float64{0, 2 * ps.p, 4 * ps.p, 2 + 2*ps.p, 4}
}

func (ps *pSquareQuantile) parabolic(i, d int) float64 {
	df := float64(d)
	ni := float64(ps.n[i])
	niPrev := float64(ps.n[i-1])
	niNext := float64(ps.n[i+1])
	term1 := df / (niNext - niPrev)
	term2 := (ni - niPrev + df) * (ps.q[i+1] - ps.q[i]) / (niNext - ni)
	term3 := (niNext - ni - df) * (ps.q[i] - ps.q[i-1]) / (ni - niPrev)
	return ps.q[i] + term1*(term2+term3)
}

func (ps *pSquareQuantile) linear(i, d int) float64 {
	if d == 1 {
		return ps.q[i] + (ps.q[i+1]-ps.q[i])/float64(ps.n[i+1]-ps.n[i])
	}
	return ps.q[i] - (ps.q[i]-ps.q[i-1])/float64(ps.n[i]-ps.n[i-1])
}

func (ps *pSquareQuantile) Quantile() float64 {
	if ps.count == 0 {
		return 0
	}
	if ps.count < 5 {
		sorted := make([]float64, ps.count)
		copy(sorted, ps.initBuffer[:ps.count])
		for i := 1; i < ps.count; i++ {
			key := sorted[i]
			j := i - 1
			for j >= 0 && sorted[j] > key {
				sorted[j+1] = sorted[j]
				j--
			}
			sorted[j+1] = key
		}
		index := int(float64(ps.count-1) * ps.p)
		if index >= ps.count {
			index = ps.count - 1
		}
		return sorted[index]
	}
	return ps.q[2]
}

func (ps *pSquareQuantile) Count() int { return ps.count }

func (ps *pSquareQuantile) Max() float64 {
	if ps.count == 0 {
		return 0
	}
	if ps.count < 5 {
		max := ps.initBuffer[0]
		for i := 1; i < ps.count; i++ {
			if ps.initBuffer[i] > max {
				max = ps.initBuffer[i]
			}
		}
		return max
	}
	return ps.q[4]
}

// pSquareMultiQuantile tracks several quantiles of the same stream at once,
// each backed by its own pSquareQuantile estimator.
//
// Not thread-safe; callers must synchronize externally.
type pSquareMultiQuantile struct {
	estimators []*pSquareQuantile
	sum        float64
	count      int
	max        float64
}

func newPSquareMultiQuantile(percentiles ...float64) *pSquareMultiQuantile {
	m := &pSquareMultiQuantile{
		estimators: make([]*pSquareQuantile, len(percentiles)),
		max:        -math.MaxFloat64,
	}
	for i, p := range percentiles {
		m.estimators[i] = newPSquareQuantile(p)
	}
	return m
}

func (m *pSquareMultiQuantile) Update(x float64) {
	m.count++
	m.sum += x
	if x > m.max {
		m.max = x
	}
	for _, est := range m.estimators {
		est.Update(x)
	}
}

func (m *pSquareMultiQuantile) Quantile(i int) float64 {
	if i < 0 || i >= len(m.estimators) {
		return 0
	}
	return m.estimators[i].Quantile()
}

func (m *pSquareMultiQuantile) Count() int { return m.count }

func (m *pSquareMultiQuantile) Max() float64 {
	if m.count == 0 {
		return 0
	}
	return m.max
}
