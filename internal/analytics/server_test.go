package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/model"
)

type weeklySource struct {
	buckets    []model.WeeklyBucket
	insight    *model.WeeklyInsight
	bucketErr  error
	insightErr error
}

func (w weeklySource) WeeklyPerformance(context.Context) ([]model.WeeklyBucket, error) {
	return w.buckets, w.bucketErr
}

func (w weeklySource) WeeklyInsight(context.Context) (*model.WeeklyInsight, error) {
	return w.insight, w.insightErr
}

var serverBuckets = []model.WeeklyBucket{
	{Day: "Mon"},
	{Day: "Tue", PracticeCount: 2, AvgScore: 70},
	{Day: "Wed", PracticeCount: 1, AvgScore: 90},
}

func TestServerReport(t *testing.T) {
	src := weeklySource{
		buckets: serverBuckets,
		insight: &model.WeeklyInsight{Message: "Steady", Color: ColorBlue},
	}
	r, err := ServerReport(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Summary.TotalPractices)
	assert.Equal(t, 80, r.Summary.AverageScore)
	assert.Equal(t, 2, r.Summary.DaysActive)
	assert.Equal(t, "Steady", r.Insight.Message)
	assert.False(t, r.Insight.HasPrior)
	assert.Nil(t, r.Prior)
	assert.Equal(t, 1, LastBucketCount(r.Current))
}

func TestServerReport_InsightIsOptional(t *testing.T) {
	src := weeklySource{buckets: serverBuckets, insightErr: errors.New("boom")}
	r, err := ServerReport(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, ComputeInsight(serverBuckets, nil), r.Insight)
}

func TestServerReport_BucketsRequired(t *testing.T) {
	boom := errors.New("boom")
	_, err := ServerReport(context.Background(), weeklySource{bucketErr: boom})
	assert.ErrorIs(t, err, boom)
}

func TestLastBucketCountEmpty(t *testing.T) {
	assert.Zero(t, LastBucketCount(nil))
}
