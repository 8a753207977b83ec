// Package noise resolves noise descriptors attached to executions.
//
// A descriptor records the error model an execution was run under. It is
// metadata only and never changes which events are emitted.
package noise

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/qtrace/internal/ir"
)

// Type is a noise model family.
type Type string

const (
	Depolarizing Type = "depolarizing"
	Thermal      Type = "thermal"
)

// Level is a named error-rate preset.
type Level string

const (
	Low      Level = "low"
	Medium   Level = "medium"
	High     Level = "high"
	VeryHigh Level = "very_high"
)

// Default thermal relaxation parameters in microseconds, typical of
// superconducting qubits.
const (
	DefaultT1       = 50.0
	DefaultT2       = 70.0
	DefaultGateTime = 0.1
)

var (
	// ErrUnknownType is returned for a noise type outside Types().
	ErrUnknownType = errors.New("unknown noise type")

	// ErrUnknownLevel is returned for a level outside Levels().
	ErrUnknownLevel = errors.New("unknown noise level")
)

var levelRates = map[Level]float64{
	Low:      0.001,
	Medium:   0.01,
	High:     0.05,
	VeryHigh: 0.1,
}

// Types lists the supported noise types.
func Types() []Type {
	return []Type{Depolarizing, Thermal}
}

// Levels lists the presets from least to most noisy.
func Levels() []Level {
	return []Level{Low, Medium, High, VeryHigh}
}

// ParseType validates a noise type name.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !slices.Contains(Types(), t) {
		return "", fmt.Errorf("%w: %q (choose from %v)", ErrUnknownType, s, Types())
	}
	return t, nil
}

// ParseLevel validates a level name.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if _, ok := levelRates[l]; !ok {
		return "", fmt.Errorf("%w: %q (choose from %v)", ErrUnknownLevel, s, Levels())
	}
	return l, nil
}

// Rate returns the base error rate of a level.
func (l Level) Rate() float64 {
	return levelRates[l]
}

// FromLevel returns depolarizing error rates for a preset. Two-qubit
// gates get twice the single-qubit rate.
func FromLevel(l Level) (ir.NoiseConfig, error) {
	rate, ok := levelRates[l]
	if !ok {
		return ir.NoiseConfig{}, fmt.Errorf("%w: %q", ErrUnknownLevel, l)
	}
	return ir.NoiseConfig{
		Level:            string(l),
		SingleGateError:  rate,
		TwoGateError:     rate * 2,
		MeasurementError: rate,
	}, nil
}

// Resolve builds the full descriptor for a type and level. Thermal noise
// gets the default T1, T2 and gate time.
func Resolve(t Type, l Level) (*ir.NoiseConfig, error) {
	if !slices.Contains(Types(), t) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	cfg, err := FromLevel(l)
	if err != nil {
		return nil, err
	}
	cfg.Type = string(t)
	if t == Thermal {
		cfg.T1 = DefaultT1
		cfg.T2 = DefaultT2
		cfg.GateTime = DefaultGateTime
	}
	return &cfg, nil
}

// ResolveNames is Resolve over raw strings. Both empty means a noiseless
// execution and returns nil. A level without a type defaults to
// depolarizing; a type without a level defaults to medium.
func ResolveNames(typeName, levelName string) (*ir.NoiseConfig, error) {
	if typeName == "" && levelName == "" {
		return nil, nil
	}
	if typeName == "" {
		typeName = string(Depolarizing)
	}
	if levelName == "" {
		levelName = string(Medium)
	}
	t, err := ParseType(typeName)
	if err != nil {
		return nil, err
	}
	l, err := ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	return Resolve(t, l)
}

// Validate checks a descriptor loaded from storage or a client.
func Validate(c *ir.NoiseConfig) error {
	if c == nil {
		return nil
	}
	if _, err := ParseType(c.Type); err != nil {
		return err
	}
	for name, p := range map[string]float64{
		"single_gate_error": c.SingleGateError,
		"two_gate_error":    c.TwoGateError,
		"measurement_error": c.MeasurementError,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s: %v is not a probability", name, p)
		}
	}
	if Type(c.Type) == Thermal {
		if c.T1 <= 0 || c.T2 <= 0 {
			return fmt.Errorf("thermal noise needs positive t1 and t2")
		}
		if c.T2 > 2*c.T1 {
			return fmt.Errorf("t2 (%v) cannot exceed 2*t1 (%v)", c.T2, 2*c.T1)
		}
		if c.GateTime <= 0 {
			return fmt.Errorf("thermal noise needs a positive gate_time")
		}
	}
	return nil
}
