package xmetrics

import "errors"

var (
	// ErrNilRegistry 传入的 Registry 为 nil
	ErrNilRegistry = errors.New("xmetrics: registry cannot be nil")

	// ErrNilMeterProvider 传入的 MeterProvider 为 nil
	ErrNilMeterProvider = errors.New("xmetrics: meter provider cannot be nil")
)
