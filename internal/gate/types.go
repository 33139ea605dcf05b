package gate

import (
	"encoding/json"
	"math"
	"math/rand/v2"
)

// #region gate-id
// ID names one of the five audit gates.
type ID string

const (
	Calibration   ID = "E0_Calibration"
	Vibration     ID = "E1_Vibration"
	Symmetry      ID = "E2_Symmetry"
	Causal        ID = "E3_Causal"
	RGPersistence ID = "E4_RGPersistence"
)

// Order is the fixed evaluation order of the gates.
var Order = []ID{Calibration, Vibration, Symmetry, Causal, RGPersistence}

// #endregion gate-id

// #region statistic
// Statistic is one named number reported by a sub-test. Non-finite values
// serialize as JSON null.
type Statistic struct {
	Name  string
	Value float64
}

type statisticWire struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

func (s Statistic) MarshalJSON() ([]byte, error) {
	w := statisticWire{Name: s.Name}
	if !math.IsNaN(s.Value) && !math.IsInf(s.Value, 0) {
		v := s.Value
		w.Value = &v
	}
	return json.Marshal(w)
}

func (s *Statistic) UnmarshalJSON(b []byte) error {
	var w statisticWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	s.Name = w.Name
	if w.Value == nil {
		s.Value = math.NaN()
	} else {
		s.Value = *w.Value
	}
	return nil
}

// #endregion statistic

// #region result
// Result is the outcome of one sub-test. Statistics keep insertion order.
type Result struct {
	Gate       ID          `json:"gate"`
	Test       string      `json:"test"`
	Statistics []Statistic `json:"statistics"`
	Passed     bool        `json:"passed"`
	Note       string      `json:"note"`
}

// Stat returns the value of the named statistic.
func (r Result) Stat(name string) (float64, bool) {
	for _, s := range r.Statistics {
		if s.Name == name {
			return s.Value, true
		}
	}
	return 0, false
}

// #endregion result

// #region sub-test
// SubTest is one statistical check belonging to a gate. Run must draw all
// randomness from rng and never fail: degenerate samples produce a neutral
// statistic and a note instead.
type SubTest interface {
	Gate() ID
	Name() string
	Run(rng *rand.Rand) Result
}

// #endregion sub-test
