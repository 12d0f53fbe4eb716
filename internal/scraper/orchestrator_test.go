package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/pkg/models"
)

func TestOrchestratorRecordsFailedJob(t *testing.T) {
	repo := newTestStore(t)
	orc := &Orchestrator{
		Listings: &ListingFetcher{Store: repo, BaseURL: "https://example.test"},
		Jobs:     NewJobsRepo(repo.DB),
	}

	ctx := context.Background()
	err := orc.RunListingFetch(ctx, "no-such-category")
	require.ErrorIs(t, err, ErrNotFound)

	jobs, err := orc.Jobs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobFailed, jobs[0].Status)
	assert.Equal(t, models.TargetCategory, jobs[0].TargetType)
	assert.Equal(t, "no-such-category", jobs[0].TargetURL)
	assert.Contains(t, jobs[0].ErrorLog, "no-such-category")
	require.NotNil(t, jobs[0].FinishedAt)
}

func TestOrchestratorRecordsCompletedJob(t *testing.T) {
	repo := newTestStore(t)
	fetcher := &fakeFetcher{err: &NavigationError{URL: "https://example.test", Err: context.DeadlineExceeded}}
	orc := &Orchestrator{
		Discovery: &NavigationDiscoverer{Store: repo, Fetcher: fetcher, BaseURL: "https://example.test"},
		Jobs:      NewJobsRepo(repo.DB),
	}

	ctx := context.Background()
	// a failed home fetch still completes: the fallback seed ran
	require.NoError(t, orc.RunNavigationDiscovery(ctx))

	jobs, err := orc.Jobs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobCompleted, jobs[0].Status)

	got, err := orc.Jobs.Get(ctx, jobs[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, jobs[0].ID, got.ID)
}
