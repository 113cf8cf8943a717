package domain

import (
	interfaces "covrun/internal/domain/interfaces"
	types "covrun/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	RunID           = types.RunID
	CoverMode       = types.CoverMode
	TestRequest     = types.TestRequest
	TestOutcome     = types.TestOutcome
	FileCoverage    = types.FileCoverage
	PackageCoverage = types.PackageCoverage
	Summary         = types.Summary
	Manifest        = types.Manifest
)

// Cover modes accepted by go test.
const (
	CoverSet    = types.CoverSet
	CoverCount  = types.CoverCount
	CoverAtomic = types.CoverAtomic
)

// Fixed report layout relative to the project directory.
const (
	ReportDir     = types.ReportDir
	ReportIndex   = types.ReportIndex
	ReportMetrics = types.ReportMetrics
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	TestRunner      = interfaces.TestRunner
	ReportRenderer  = interfaces.ReportRenderer
	ManifestStore   = interfaces.ManifestStore
	MetricsRecorder = interfaces.MetricsRecorder
	Publisher       = interfaces.Publisher
	RunLister       = interfaces.RunLister
)
