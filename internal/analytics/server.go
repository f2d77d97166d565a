package analytics

import (
	"context"
	"fmt"

	"github.com/linguaku/linguaku/internal/model"
)

// WeeklySource serves the server-side weekly aggregation.
type WeeklySource interface {
	WeeklyPerformance(ctx context.Context) ([]model.WeeklyBucket, error)
	WeeklyInsight(ctx context.Context) (*model.WeeklyInsight, error)
}

// ServerReport fetches the weekly buckets and insight computed by the
// server. Only the buckets are required.
func ServerReport(ctx context.Context, src WeeklySource) (Report, error) {
	buckets, err := src.WeeklyPerformance(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("weekly performance: %w", err)
	}
	insight, err := src.WeeklyInsight(ctx)
	if err != nil {
		return FromServer(buckets, nil), nil
	}
	return FromServer(buckets, insight), nil
}

// FromServer builds a Report from server-computed buckets. A nil insight is
// derived from the buckets alone. The server insight carries no prior-window
// flag, so HasPrior stays false and a non-zero Improvement is shown as is.
func FromServer(buckets []model.WeeklyBucket, insight *model.WeeklyInsight) Report {
	r := Report{Current: buckets, Summary: Summarize(buckets)}
	if insight != nil {
		r.Insight = *insight
	} else {
		r.Insight = ComputeInsight(buckets, nil)
	}
	return r
}

// LastBucketCount is the practice count of the newest bucket, which the
// server reports for today.
func LastBucketCount(buckets []model.WeeklyBucket) int {
	if len(buckets) == 0 {
		return 0
	}
	return buckets[len(buckets)-1].PracticeCount
}
