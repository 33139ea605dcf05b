package rpc

import (
	"encoding/json"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/audit"
)

// maxExactSeed is the largest seed a Struct number carries without loss.
const maxExactSeed = 1 << 53

// #region report-conversion
// ReportToStruct encodes a report as a Struct through its JSON form.
func ReportToStruct(r audit.Report) (*structpb.Struct, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("report struct: %w", err)
	}
	return s, nil
}

// StructToReport decodes and schema-validates a report Struct.
func StructToReport(s *structpb.Struct) (audit.Report, error) {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return audit.Report{}, fmt.Errorf("marshal struct: %w", err)
	}
	return audit.ParseReport(data)
}
// #endregion report-conversion

// #region run-request
// RunRequest carries the optional overrides of a RunAudit call.
type RunRequest struct {
	Seed     *uint64
	Parallel *bool
	Scale    *float64
}

func (r RunRequest) toStruct() (*structpb.Struct, error) {
	m := map[string]any{}
	if r.Seed != nil {
		m["seed"] = float64(*r.Seed)
	}
	if r.Parallel != nil {
		m["parallel"] = *r.Parallel
	}
	if r.Scale != nil {
		m["scale"] = *r.Scale
	}
	return structpb.NewStruct(m)
}

// parseRunRequest reads RunAudit overrides, rejecting unknown keys and
// values of the wrong kind.
func parseRunRequest(s *structpb.Struct) (RunRequest, error) {
	var req RunRequest
	for key, v := range s.GetFields() {
		switch key {
		case "seed":
			n, ok := v.GetKind().(*structpb.Value_NumberValue)
			if !ok {
				return req, fmt.Errorf("seed must be a number")
			}
			f := n.NumberValue
			if f < 0 || f != math.Trunc(f) || f > maxExactSeed {
				return req, fmt.Errorf("seed must be a non-negative integer ≤ 2^53, got %v", f)
			}
			seed := uint64(f)
			req.Seed = &seed
		case "parallel":
			b, ok := v.GetKind().(*structpb.Value_BoolValue)
			if !ok {
				return req, fmt.Errorf("parallel must be a bool")
			}
			req.Parallel = &b.BoolValue
		case "scale":
			n, ok := v.GetKind().(*structpb.Value_NumberValue)
			if !ok {
				return req, fmt.Errorf("scale must be a number")
			}
			if n.NumberValue <= 0 || math.IsInf(n.NumberValue, 0) || math.IsNaN(n.NumberValue) {
				return req, fmt.Errorf("scale must be positive, got %v", n.NumberValue)
			}
			scale := n.NumberValue
			req.Scale = &scale
		default:
			return req, fmt.Errorf("unknown field %q", key)
		}
	}
	return req, nil
}

// apply returns base with the overrides of r.
func (r RunRequest) apply(base audit.Config) audit.Config {
	cfg := base
	if r.Seed != nil {
		cfg.Seed = *r.Seed
	}
	if r.Parallel != nil {
		cfg.Parallel = *r.Parallel
	}
	if r.Scale != nil {
		cfg.Gate = cfg.Gate.Scaled(*r.Scale)
	}
	return cfg
}
// #endregion run-request
