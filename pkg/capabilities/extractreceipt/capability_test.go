package extractreceipt

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalomar/gastobot/pkg/filecache"
	"github.com/jpalomar/gastobot/pkg/models"
	"github.com/jpalomar/gastobot/pkg/objectstore/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeVision struct {
	draft     *models.ReceiptDraft
	err       error
	seenPaths []string
	seenBytes [][]byte
}

func (v *fakeVision) ExtractReceipt(_ context.Context, imagePath string) (*models.ReceiptDraft, error) {
	v.seenPaths = append(v.seenPaths, imagePath)

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, err
	}

	v.seenBytes = append(v.seenBytes, data)

	return v.draft, v.err
}

func newTestCapability(t *testing.T, vision *fakeVision) (*Capability, *memory.Store, *filecache.Cache) {
	t.Helper()

	cache, err := filecache.New(t.TempDir())
	require.NoError(t, err)

	store := memory.NewStore()
	capability := New(testLogger(), vision, store, cache, "telegram/")

	return capability, store, cache
}

func TestExecute_NoFileRefIsNoop(t *testing.T) {
	vision := &fakeVision{}
	capability, _, _ := newTestCapability(t, vision)

	state := models.WorkflowState{TurnID: "t-1", UserInput: "hello"}

	next, err := capability.Execute(context.Background(), state)
	require.NoError(t, err)

	assert.True(t, next.Equal(state))
	assert.Empty(t, vision.seenPaths)
}

func TestExecute_ExistingDraftIsNoop(t *testing.T) {
	vision := &fakeVision{}
	capability, _, _ := newTestCapability(t, vision)

	state := models.WorkflowState{
		TurnID:       "t-1",
		FileRef:      "telegram/1/a.jpg",
		ReceiptDraft: &models.ReceiptDraft{IsReceipt: true},
	}

	next, err := capability.Execute(context.Background(), state)
	require.NoError(t, err)

	assert.True(t, next.Equal(state))
	assert.Empty(t, vision.seenPaths)
}

func TestExecute_ResolvesFromCacheFirst(t *testing.T) {
	vision := &fakeVision{draft: &models.ReceiptDraft{IsReceipt: true, Total: "19.99"}}
	capability, _, cache := newTestCapability(t, vision)

	_, err := cache.Store("telegram/1/a.jpg", []byte("cached-bytes"))
	require.NoError(t, err)

	next, err := capability.Execute(context.Background(), models.WorkflowState{
		TurnID:  "t-1",
		FileRef: "telegram/1/a.jpg",
	})
	require.NoError(t, err)

	require.NotNil(t, next.ReceiptDraft)
	assert.True(t, next.ReceiptDraft.IsReceipt)
	require.Len(t, vision.seenBytes, 1)
	assert.Equal(t, []byte("cached-bytes"), vision.seenBytes[0])
}

func TestExecute_ResolvesFromStoreOnCacheMiss(t *testing.T) {
	vision := &fakeVision{draft: &models.ReceiptDraft{IsReceipt: true}}
	capability, store, _ := newTestCapability(t, vision)

	err := store.Put(context.Background(), "telegram/1/a.jpg", []byte("stored-bytes"), "image/jpeg", nil)
	require.NoError(t, err)

	next, err := capability.Execute(context.Background(), models.WorkflowState{
		TurnID:  "t-1",
		FileRef: "telegram/1/a.jpg",
	})
	require.NoError(t, err)

	require.NotNil(t, next.ReceiptDraft)
	require.Len(t, vision.seenBytes, 1)
	assert.Equal(t, []byte("stored-bytes"), vision.seenBytes[0])
}

func TestExecute_PrefixScanPicksMostRecentMatch(t *testing.T) {
	vision := &fakeVision{draft: &models.ReceiptDraft{IsReceipt: true}}
	capability, store, _ := newTestCapability(t, vision)

	// The reference is a bare file id; only keys containing it match.
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	err := store.Put(context.Background(), "telegram/1/20250314T110000Z_fileid42.jpg", []byte("older"), "image/jpeg", nil)
	require.NoError(t, err)

	store.SetClock(func() time.Time { return now.Add(time.Hour) })
	err = store.Put(context.Background(), "telegram/1/20250314T120000Z_fileid42.jpg", []byte("newer"), "image/jpeg", nil)
	require.NoError(t, err)

	store.SetClock(func() time.Time { return now.Add(2 * time.Hour) })
	err = store.Put(context.Background(), "telegram/1/20250314T130000Z_other.jpg", []byte("unrelated"), "image/jpeg", nil)
	require.NoError(t, err)

	next, err := capability.Execute(context.Background(), models.WorkflowState{
		TurnID:  "t-1",
		FileRef: "fileid42",
	})
	require.NoError(t, err)

	require.NotNil(t, next.ReceiptDraft)
	require.Len(t, vision.seenBytes, 1)
	assert.Equal(t, []byte("newer"), vision.seenBytes[0])
}

func TestExecute_UnresolvableReferenceIsNoop(t *testing.T) {
	vision := &fakeVision{}
	capability, _, _ := newTestCapability(t, vision)

	state := models.WorkflowState{TurnID: "t-1", FileRef: "telegram/1/missing.jpg"}

	next, err := capability.Execute(context.Background(), state)
	require.NoError(t, err)

	assert.True(t, next.Equal(state))
	assert.Empty(t, vision.seenPaths)
}

func TestExecute_VisionErrorPropagatesUnchangedState(t *testing.T) {
	vision := &fakeVision{err: errors.New("vision backend down")}
	capability, _, cache := newTestCapability(t, vision)

	_, err := cache.Store("telegram/1/a.jpg", []byte("bytes"))
	require.NoError(t, err)

	state := models.WorkflowState{TurnID: "t-1", FileRef: "telegram/1/a.jpg"}

	next, err := capability.Execute(context.Background(), state)
	require.Error(t, err)
	assert.True(t, next.Equal(state))
}

func TestExecute_TemporaryFileIsRemoved(t *testing.T) {
	vision := &fakeVision{draft: &models.ReceiptDraft{IsReceipt: true}}
	capability, _, cache := newTestCapability(t, vision)

	_, err := cache.Store("telegram/1/a.jpg", []byte("bytes"))
	require.NoError(t, err)

	_, err = capability.Execute(context.Background(), models.WorkflowState{
		TurnID:  "t-1",
		FileRef: "telegram/1/a.jpg",
	})
	require.NoError(t, err)

	require.Len(t, vision.seenPaths, 1)
	_, statErr := os.Stat(vision.seenPaths[0])
	assert.True(t, os.IsNotExist(statErr), "temp file should be gone after extraction")
}
