package models

// ReportFormat identifies the rendered file format of a report download.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
	ReportFormatTXT ReportFormat = "txt"
)

// ReportType identifies which document a report download renders.
type ReportType string

const (
	ReportTypeProgress    ReportType = "PROGRESS"
	ReportTypeTerm        ReportType = "TERM"
	ReportTypeAssessments ReportType = "ASSESSMENTS"
)
