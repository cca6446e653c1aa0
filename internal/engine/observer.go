package engine

import "context"

// Observer receives progress events during a run. Methods may be called from
// several goroutines at once.
type Observer interface {
	JobStarted(ctx context.Context, runID string, total int)
	ResultRecorded(ctx context.Context, runID string, res Result)
	JobFinished(ctx context.Context, report *Report)
}

// Observers fans events out to each member in order.
type Observers []Observer

func (o Observers) JobStarted(ctx context.Context, runID string, total int) {
	for _, obs := range o {
		obs.JobStarted(ctx, runID, total)
	}
}

func (o Observers) ResultRecorded(ctx context.Context, runID string, res Result) {
	for _, obs := range o {
		obs.ResultRecorded(ctx, runID, res)
	}
}

func (o Observers) JobFinished(ctx context.Context, report *Report) {
	for _, obs := range o {
		obs.JobFinished(ctx, report)
	}
}
