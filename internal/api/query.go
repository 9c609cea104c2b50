package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/ferretcode/lovebug/internal/types"
)

type intRange struct {
	min, max int
}

type floatRange struct {
	min, max float64
}

var hoursRange = intRange{1, 168}

func optionalInt(values url.Values, name string, bounds intRange) (*int, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &queryError{param: name, reason: "must be an integer"}
	}

	if value < bounds.min || value > bounds.max {
		return nil, &queryError{param: name, reason: fmt.Sprintf("must be between %d and %d", bounds.min, bounds.max)}
	}

	return &value, nil
}

func intParam(values url.Values, name string, fallback int, bounds intRange) (int, error) {
	value, err := optionalInt(values, name, bounds)
	if err != nil || value == nil {
		return fallback, err
	}
	return *value, nil
}

func optionalFloat(values url.Values, name string, bounds *floatRange) (*float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, &queryError{param: name, reason: "must be a number"}
	}

	if bounds != nil && (value < bounds.min || value > bounds.max) {
		return nil, &queryError{param: name, reason: fmt.Sprintf("must be between %g and %g", bounds.min, bounds.max)}
	}

	return &value, nil
}

func floatParam(values url.Values, name string, fallback float64, bounds floatRange) (float64, error) {
	value, err := optionalFloat(values, name, &bounds)
	if err != nil || value == nil {
		return fallback, err
	}
	return *value, nil
}

func severityParam(values url.Values) (types.Severity, error) {
	raw := values.Get("severity")
	if raw == "" {
		return "", nil
	}

	severity, err := types.ParseSeverity(raw)
	if err != nil {
		return "", &queryError{param: "severity", reason: "must be one of low, medium, high, critical"}
	}
	return severity, nil
}

func platformParam(values url.Values) (types.Platform, error) {
	raw := values.Get("platform")
	if raw == "" {
		return "", nil
	}

	platform, err := types.ParsePlatform(raw)
	if err != nil {
		return "", &queryError{param: "platform", reason: "must be one of twitter, instagram, naver_blog, kakao_talk"}
	}
	return platform, nil
}
