package pricing

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	ErrInvalidLiquidity  = errors.New("liquidity parameter must be positive")
	ErrUnknownInstrument = errors.New("unknown instrument")
)

// #region instruments
// Instrument names one of the three contracts the book quotes.
type Instrument string

const (
	LockFuture   Instrument = "LF"
	PhaseBarrier Instrument = "PBO"
	FailureSwap  Instrument = "EFS"
)

// Instruments lists every quoted contract in display order.
var Instruments = []Instrument{LockFuture, PhaseBarrier, FailureSwap}

// #endregion instruments

// #region market-maker
// MarketMaker is a logarithmic market scoring rule book over Instruments.
// Safe for concurrent use.
type MarketMaker struct {
	mu        sync.Mutex
	b         float64
	positions map[Instrument]float64
}

// NewMarketMaker returns a book with liquidity b and flat positions.
func NewMarketMaker(b float64) (*MarketMaker, error) {
	if math.IsNaN(b) || math.IsInf(b, 0) || b <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidLiquidity, b)
	}
	pos := make(map[Instrument]float64, len(Instruments))
	for _, in := range Instruments {
		pos[in] = 0
	}
	return &MarketMaker{b: b, positions: pos}, nil
}

// Liquidity returns b.
func (m *MarketMaker) Liquidity() float64 { return m.b }

// Position returns the outstanding quantity of in.
func (m *MarketMaker) Position(in Instrument) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.positions[in]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownInstrument, in)
	}
	return q, nil
}

// Price returns exp(q_i/b) / Σ exp(q_j/b).
func (m *MarketMaker) Price(in Instrument) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.positions[in]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownInstrument, in)
	}
	shift := m.maxScaled(m.positions)
	var z float64
	for _, qj := range m.positions {
		z += math.Exp(qj/m.b - shift)
	}
	return math.Exp(q/m.b-shift) / z, nil
}

// Cost returns C(q + Δ) − C(q) for buying quantity of in. Negative
// quantities sell.
func (m *MarketMaker) Cost(in Instrument, quantity float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cost(in, quantity)
}

// Execute applies the trade and returns what the trader pays.
func (m *MarketMaker) Execute(in Instrument, quantity float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.cost(in, quantity)
	if err != nil {
		return 0, err
	}
	m.positions[in] += quantity
	return c, nil
}

func (m *MarketMaker) cost(in Instrument, quantity float64) (float64, error) {
	if _, ok := m.positions[in]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownInstrument, in)
	}
	after := make(map[Instrument]float64, len(m.positions))
	for k, v := range m.positions {
		after[k] = v
	}
	after[in] += quantity
	return m.costFn(after) - m.costFn(m.positions), nil
}

// costFn is b·log Σ exp(q_i/b), computed with a max shift.
func (m *MarketMaker) costFn(pos map[Instrument]float64) float64 {
	shift := m.maxScaled(pos)
	var sum float64
	for _, q := range pos {
		sum += math.Exp(q/m.b - shift)
	}
	return m.b * (shift + math.Log(sum))
}

func (m *MarketMaker) maxScaled(pos map[Instrument]float64) float64 {
	shift := math.Inf(-1)
	for _, q := range pos {
		shift = math.Max(shift, q/m.b)
	}
	return shift
}

// #endregion market-maker
