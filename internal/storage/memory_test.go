package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreAssignsIDAndTimestamp(t *testing.T) {
	store := NewInMemoryStore()

	saved, err := store.SaveReport(context.Background(), DesignReport{OverallImpression: "nice"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	quiz, err := store.SaveQuizResult(context.Background(), QuizResult{Vibe: "Cozy", Priority: "Comfort", Budget: "Low", StyleTag: "Hygge Haven"})
	require.NoError(t, err)
	assert.NotEmpty(t, quiz.ID)
}

func TestInMemoryStoreListsNewestFirst(t *testing.T) {
	store := NewInMemoryStore()

	for i := 0; i < 3; i++ {
		_, err := store.SaveReport(context.Background(), DesignReport{OverallImpression: fmt.Sprintf("report %d", i)})
		require.NoError(t, err)
	}

	reports, err := store.ListReports(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "report 2", reports[0].OverallImpression)
	assert.Equal(t, "report 0", reports[2].OverallImpression)
}

func TestInMemoryStoreCapsRetainedReports(t *testing.T) {
	store := NewInMemoryStore()

	for i := 0; i < 60; i++ {
		_, err := store.SaveReport(context.Background(), DesignReport{OverallImpression: fmt.Sprintf("report %d", i)})
		require.NoError(t, err)
	}

	reports, err := store.ListReports(context.Background())
	require.NoError(t, err)
	assert.Len(t, reports, 50)
	assert.Equal(t, "report 59", reports[0].OverallImpression)
}
