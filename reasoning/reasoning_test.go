package reasoning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockService_CannedBeatsQueueBeatsEcho(t *testing.T) {
	svc := NewMockService().
		AddResponse("capability gap", `{"importance":0.9}`).
		Queue("first queued", "second queued")

	resp, err := svc.CompleteText(context.Background(), Request{Prompt: "analyze this capability gap please"})
	require.NoError(t, err)
	assert.Equal(t, `{"importance":0.9}`, resp.Text)

	resp, err = svc.CompleteText(context.Background(), Request{Prompt: "something else"})
	require.NoError(t, err)
	assert.Equal(t, "first queued", resp.Text)

	resp, err = svc.CompleteText(context.Background(), Request{Prompt: "another"})
	require.NoError(t, err)
	assert.Equal(t, "second queued", resp.Text)

	resp, err = svc.CompleteText(context.Background(), Request{Prompt: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: ping", resp.Text)
}

func TestMockService_FailTimesRecovers(t *testing.T) {
	boom := errors.New("boom")
	svc := NewMockService().FailTimes(2, boom)

	_, err := svc.CompleteText(context.Background(), Request{Prompt: "a"})
	assert.ErrorIs(t, err, boom)
	_, err = svc.CompleteText(context.Background(), Request{Prompt: "b"})
	assert.ErrorIs(t, err, boom)

	resp, err := svc.CompleteText(context.Background(), Request{Prompt: "c"})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: c", resp.Text)
}

func TestMockService_RecordsCalls(t *testing.T) {
	svc := NewMockService()

	_, err := svc.CompleteText(context.Background(), Request{Prompt: "one", Model: "m1", Temperature: 0.3})
	require.NoError(t, err)
	_, err = svc.CompleteText(context.Background(), Request{Prompt: "two"})
	require.NoError(t, err)

	calls := svc.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "one", calls[0].Prompt)
	assert.Equal(t, "m1", calls[0].Model)
	assert.InDelta(t, 0.3, calls[0].Temperature, 1e-9)
	assert.Equal(t, "two", svc.LastCall().Prompt)
	assert.Equal(t, 2, svc.CallCount())
}

func TestMockService_HonorsContext(t *testing.T) {
	svc := NewMockService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CompleteText(ctx, Request{Prompt: "late"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, svc.CallCount())
}

func TestStructured_DecodesFencedJSON(t *testing.T) {
	type payload struct {
		Importance float64 `json:"importance"`
		Archetype  string  `json:"archetype"`
	}

	svc := NewMockService().AddResponse("gap", "Sure!\n```json\n{\"importance\":0.8,\"archetype\":\"domain_expert\"}\n```")

	out, err := Structured[payload](context.Background(), svc, Request{Prompt: "analyze gap"})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, out.Importance, 1e-9)
	assert.Equal(t, "domain_expert", out.Archetype)
}

func TestStructured_ErrorWithoutObject(t *testing.T) {
	type payload struct {
		Importance float64 `json:"importance"`
	}

	svc := NewMockService().AddResponse("gap", "I am unable to help with that.")

	_, err := Structured[payload](context.Background(), svc, Request{Prompt: "analyze gap"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "structured completion")
}

func TestStructured_PropagatesServiceError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewMockService().FailWith(boom)

	type payload struct{}
	_, err := Structured[payload](context.Background(), svc, Request{Prompt: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestDescribeSchema_RendersFields(t *testing.T) {
	type payload struct {
		Importance float64 `json:"importance" description:"how critical the gap is"`
		Archetype  string  `json:"archetype"`
	}

	desc := DescribeSchema[payload]()
	assert.Contains(t, desc, `"importance"`)
	assert.Contains(t, desc, "how critical the gap is")
}

func TestUsage_TotalTokens(t *testing.T) {
	u := Usage{InputTokens: 12, OutputTokens: 30}
	assert.Equal(t, int64(42), u.TotalTokens())
}
