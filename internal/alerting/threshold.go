package alerting

import (
	"fmt"
	"sort"
)

// Metric names understood by the evaluator. Direction is implicit per metric:
// availability and MTBF are higher-is-better, the rest lower-is-better.
const (
	MetricAvailability  = "availability"
	MetricDowntime      = "downtime"
	MetricMTBF          = "mtbf"
	MetricMTTR          = "mttr"
	MetricStopFrequency = "stop_frequency"
)

// EvalSeverity is the outcome of a threshold evaluation.
type EvalSeverity string

const (
	SeverityGood     EvalSeverity = "good"
	SeverityWarning  EvalSeverity = "warning"
	SeverityCritical EvalSeverity = "critical"
)

// Levels holds the three configured levels for one metric.
type Levels struct {
	Critical float64 `json:"critical" yaml:"critical"`
	Warning  float64 `json:"warning" yaml:"warning"`
	Good     float64 `json:"good" yaml:"good"`
}

// ThresholdConfig maps metric names onto their levels.
type ThresholdConfig map[string]Levels

var higherIsBetter = map[string]bool{
	MetricAvailability:  true,
	MetricMTBF:          true,
	MetricDowntime:      false,
	MetricMTTR:          false,
	MetricStopFrequency: false,
}

var levelNames = map[string]struct{}{
	"critical": {},
	"warning":  {},
	"good":     {},
}

// DefaultThresholds returns the built-in configuration used when the settings
// store is unavailable or carries no overrides. Availability and MTBF in
// percent/hours, downtime in hours per day, MTTR in minutes, stop frequency
// in stops per day.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		MetricAvailability:  {Critical: 75, Warning: 85, Good: 95},
		MetricDowntime:      {Critical: 4, Warning: 2, Good: 1},
		MetricMTBF:          {Critical: 2, Warning: 8, Good: 24},
		MetricMTTR:          {Critical: 60, Warning: 30, Good: 15},
		MetricStopFrequency: {Critical: 10, Warning: 5, Good: 3},
	}
}

// Evaluate classifies a live metric value against the configured levels.
// Comparisons are strict: a value exactly on a level does not trigger it.
func Evaluate(metric string, value float64, cfg ThresholdConfig) EvalSeverity {
	levels, ok := cfg[metric]
	if !ok {
		return SeverityGood
	}
	if higherIsBetter[metric] {
		switch {
		case value < levels.Critical:
			return SeverityCritical
		case value < levels.Warning:
			return SeverityWarning
		default:
			return SeverityGood
		}
	}
	switch {
	case value > levels.Critical:
		return SeverityCritical
	case value > levels.Warning:
		return SeverityWarning
	default:
		return SeverityGood
	}
}

// ValidationResult collects every problem found in a proposed threshold
// update. Updates apply atomically: any error rejects the whole config.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateUpdate checks a raw threshold update for unknown metrics, unknown
// level names, negative values and broken ordering, returning the parsed
// config when everything holds.
func ValidateUpdate(raw map[string]map[string]float64) (ThresholdConfig, ValidationResult) {
	result := ValidationResult{Valid: true}
	cfg := make(ThresholdConfig, len(raw))

	metricsInOrder := make([]string, 0, len(raw))
	for metric := range raw {
		metricsInOrder = append(metricsInOrder, metric)
	}
	sort.Strings(metricsInOrder)

	for _, metric := range metricsInOrder {
		levels := raw[metric]
		dirKnown := false
		higher := false
		if h, ok := higherIsBetter[metric]; ok {
			dirKnown = true
			higher = h
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("unknown metric %q", metric))
		}

		parsed := Levels{}
		for name, value := range levels {
			if _, ok := levelNames[name]; !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("unknown level %q for metric %q", name, metric))
				continue
			}
			if value < 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("negative value %.2f for %s.%s", value, metric, name))
			}
			switch name {
			case "critical":
				parsed.Critical = value
			case "warning":
				parsed.Warning = value
			case "good":
				parsed.Good = value
			}
		}
		for _, name := range []string{"critical", "warning", "good"} {
			if _, ok := levels[name]; !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("missing level %q for metric %q", name, metric))
			}
		}

		if dirKnown {
			if higher {
				if !(parsed.Critical < parsed.Warning && parsed.Warning < parsed.Good) {
					result.Errors = append(result.Errors, fmt.Sprintf("metric %q requires critical < warning < good", metric))
				}
			} else {
				if !(parsed.Critical > parsed.Warning && parsed.Warning > parsed.Good) {
					result.Errors = append(result.Errors, fmt.Sprintf("metric %q requires critical > warning > good", metric))
				}
			}
		}
		cfg[metric] = parsed
	}

	if len(result.Errors) > 0 {
		result.Valid = false
		return nil, result
	}
	return cfg, result
}
