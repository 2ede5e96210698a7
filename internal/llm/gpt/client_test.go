package gpt

import "testing"

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini"); err == nil {
		t.Error("Expected error for empty API key")
	}
	if _, err := NewClient("sk-test", ""); err == nil {
		t.Error("Expected error for empty model")
	}

	client, err := NewClient("sk-test", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if client.modelID != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %s", client.modelID)
	}
}
