package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/jwebster45206/white-rabbit/pkg/narrative"
)

func TestMockLLMService(t *testing.T) {
	mockService := NewMockLLMAPI()

	err := mockService.InitModel(context.Background(), "test-model")
	if err != nil {
		t.Errorf("InitModel failed: %v", err)
	}
	if len(mockService.InitModelCalls) != 1 {
		t.Errorf("Expected 1 InitModel call, got %d", len(mockService.InitModelCalls))
	}
	if mockService.InitModelCalls[0] != "test-model" {
		t.Errorf("Expected model name 'test-model', got '%s'", mockService.InitModelCalls[0])
	}

	response, err := mockService.Complete(context.Background(), "Hello")
	if err != nil {
		t.Errorf("Complete failed: %v", err)
	}
	if response != "Mock response" {
		t.Errorf("Expected 'Mock response', got '%s'", response)
	}

	_, completeCalls := mockService.GetCalls()
	if len(completeCalls) != 1 {
		t.Errorf("Expected 1 Complete call, got %d", len(completeCalls))
	}
	if completeCalls[0].Prompt != "Hello" {
		t.Errorf("Expected prompt 'Hello', got '%s'", completeCalls[0].Prompt)
	}
}

func TestMockLLMService_StageAwareDefault(t *testing.T) {
	mockService := NewMockLLMAPI()
	ps := narrative.MustDefaultPatternSet()

	for _, stage := range narrative.Stages {
		prompt := "Output strictly in this format:\n" + narrative.Grammar(stage)
		resp, err := mockService.Complete(context.Background(), prompt)
		if err != nil {
			t.Fatalf("%s: Complete failed: %v", stage, err)
		}
		if _, err := ps.Parse(resp, stage); err != nil {
			t.Errorf("%s: default completion does not parse: %v", stage, err)
		}
	}
}

func TestMockLLMService_QueuedResponses(t *testing.T) {
	mockService := NewMockLLMAPI()
	mockService.QueueResponses("first", "second")

	for _, want := range []string{"first", "second", "Mock response"} {
		got, err := mockService.Complete(context.Background(), "anything")
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}
}

func TestMockLLMService_ErrorHandling(t *testing.T) {
	mockService := NewMockLLMAPI()

	expectedErr := fmt.Errorf("initialization failed")
	mockService.SetInitModelError(expectedErr)
	err := mockService.InitModel(context.Background(), "test-model")
	if err == nil || err.Error() != expectedErr.Error() {
		t.Errorf("Expected error '%v', got '%v'", expectedErr, err)
	}

	expectedCompleteErr := fmt.Errorf("generation failed")
	mockService.SetCompleteError(expectedCompleteErr)
	_, err = mockService.Complete(context.Background(), "Hello")
	if err == nil || err.Error() != expectedCompleteErr.Error() {
		t.Errorf("Expected error '%v', got '%v'", expectedCompleteErr, err)
	}
}

func TestMockLLMService_Reset(t *testing.T) {
	mockService := NewMockLLMAPI()
	mockService.QueueResponses("queued")
	_ = mockService.InitModel(context.Background(), "test-model")
	_, _ = mockService.Complete(context.Background(), "Hello")

	mockService.Reset()

	initCalls, completeCalls := mockService.GetCalls()
	if len(initCalls) != 0 || len(completeCalls) != 0 {
		t.Error("Expected call tracking to be cleared")
	}
	if len(mockService.Responses) != 0 {
		t.Error("Expected queued responses to be cleared")
	}
}
