package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/white-rabbit/internal/metrics"
)

func TestInstrumentedLLM_CountsRequests(t *testing.T) {
	mock := NewMockLLMAPI()
	llm := NewInstrumentedLLM(mock, "mock", "test-model")

	success := metrics.LLMRequestsTotal.WithLabelValues("mock", "test-model", "success")
	failure := metrics.LLMRequestsTotal.WithLabelValues("mock", "test-model", "error")
	beforeOK, beforeErr := testutil.ToFloat64(success), testutil.ToFloat64(failure)

	_, err := llm.Complete(context.Background(), "hello")
	require.NoError(t, err)

	mock.SetCompleteError(errors.New("boom"))
	_, err = llm.Complete(context.Background(), "hello")
	require.Error(t, err)

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(success))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(failure))
}

func TestInstrumentedLLM_InitModelDelegates(t *testing.T) {
	mock := NewMockLLMAPI()
	llm := NewInstrumentedLLM(mock, "mock", "")

	require.NoError(t, llm.InitModel(context.Background(), "other-model"))
	initCalls, _ := mock.GetCalls()
	assert.Equal(t, []string{"other-model"}, initCalls)
	assert.Equal(t, "other-model", llm.model)
}
