package file

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/chartsight/internal/domain/faults"
)

func TestFaultLogLatestNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faults.jsonl")
	l, err := OpenFaultLog(path)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Save(ctx, &faults.Fault{Phase: "request", Message: "first"}))
	require.NoError(t, l.Save(ctx, &faults.Fault{Phase: "parse", Message: "second", Raw: "not json"}))
	require.NoError(t, l.Save(ctx, &faults.Fault{Phase: "persist", Message: "third"}))

	got, err := l.Latest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Message)
	assert.Equal(t, "second", got[1].Message)
	assert.Equal(t, "not json", got[1].Raw, "raw payload kept verbatim")
}

func TestFaultLogIDsContinueAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faults.jsonl")
	ctx := context.Background()

	l, err := OpenFaultLog(path)
	require.NoError(t, err)
	require.NoError(t, l.Save(ctx, &faults.Fault{Phase: "request", Message: "a"}))
	require.NoError(t, l.Save(ctx, &faults.Fault{Phase: "request", Message: "b"}))

	l2, err := OpenFaultLog(path)
	require.NoError(t, err)
	require.NoError(t, l2.Save(ctx, &faults.Fault{Phase: "request", Message: "c"}))

	got, err := l2.Latest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(3), got[0].ID)
}
