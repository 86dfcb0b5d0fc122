package syncx

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-trainer/internal/db"
)

func TestEventRepo_AppendSince(t *testing.T) {
	ctx := context.Background()
	h, err := db.Open(ctx, db.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	repo := NewEventRepo(h)
	e1, err := NewEvent(TypeQuestionSetCreated, "set-1", map[string]any{"questions": 5})
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, e1))
	e2, err := NewEvent(TypeTestCompleted, "set-1", map[string]any{"total": 80})
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, e2))

	all, err := repo.Since(ctx, 0, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "local", all[0].SiteID)
	assert.Less(t, all[0].Seq, all[1].Seq)

	done, err := repo.Since(ctx, 0, TypeTestCompleted, 10)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.JSONEq(t, `{"total":80}`, done[0].DataJSON)

	after, err := repo.Since(ctx, all[1].Seq, "", 10)
	require.NoError(t, err)
	assert.Empty(t, after)
}
