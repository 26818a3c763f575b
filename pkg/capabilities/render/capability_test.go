package render

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalomar/gastobot/pkg/models"
)

const fallback = "Sorry, I couldn't process that right now. Please try again."

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeBackend struct {
	text string
	err  error
}

func (b *fakeBackend) RenderResponse(_ context.Context, _ models.WorkflowState) (string, error) {
	return b.text, b.err
}

func TestExecute_SetsBackendReply(t *testing.T) {
	capability := New(testLogger(), &fakeBackend{text: "Logged $19.99 at Cafe Central."}, fallback)

	next, err := capability.Execute(context.Background(), models.WorkflowState{TurnID: "t-1"})
	require.NoError(t, err)

	assert.Equal(t, "Logged $19.99 at Cafe Central.", next.ResponseText)
}

func TestExecute_BackendErrorUsesFallback(t *testing.T) {
	capability := New(testLogger(), &fakeBackend{err: errors.New("model unavailable")}, fallback)

	next, err := capability.Execute(context.Background(), models.WorkflowState{TurnID: "t-1"})
	require.NoError(t, err, "render never surfaces backend errors")

	assert.Equal(t, fallback, next.ResponseText)
}

func TestExecute_BlankReplyUsesFallback(t *testing.T) {
	capability := New(testLogger(), &fakeBackend{text: "   \n"}, fallback)

	next, err := capability.Execute(context.Background(), models.WorkflowState{TurnID: "t-1"})
	require.NoError(t, err)

	assert.Equal(t, fallback, next.ResponseText)
}
