// cmd/policy-navigator/adapters.go
package main

import (
	"policy-navigator/internal/common/logger"

	dp "policy-navigator/internal/capabilities/document-parse"
	ie "policy-navigator/internal/capabilities/information-extract"
	sr "policy-navigator/internal/capabilities/solar-reasoning"
)

// Logger adapters for capabilities that have their own Logger interfaces
type documentParseLoggerAdapter struct {
	logger.Logger
}

func (a *documentParseLoggerAdapter) With(fields map[string]interface{}) dp.Logger {
	return &documentParseLoggerAdapter{a.Logger.With(fields)}
}

type informationExtractLoggerAdapter struct {
	logger.Logger
}

func (a *informationExtractLoggerAdapter) With(fields map[string]interface{}) ie.Logger {
	return &informationExtractLoggerAdapter{a.Logger.With(fields)}
}

type solarReasoningLoggerAdapter struct {
	logger.Logger
}

func (a *solarReasoningLoggerAdapter) With(fields map[string]interface{}) sr.Logger {
	return &solarReasoningLoggerAdapter{a.Logger.With(fields)}
}
