package models

// TickerReportRequest selects one ticker of the latest baseline report.
type TickerReportRequest struct {
	Ticker string `param:"ticker" validate:"required,max=16"`
}

// DatasetSummaryRequest optionally narrows the summary to one ticker.
type DatasetSummaryRequest struct {
	Ticker string `query:"ticker" validate:"omitempty,max=16"`
}
