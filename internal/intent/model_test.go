// ABOUTME: Tests for the LLM-based intent classifier with canned replies.
// ABOUTME: Covers exact matches, whitespace, off-script replies, prompt content, and call errors.

package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mauromedda/medsupport-go/pkg/ai"
)

func TestLLMClassifier_ExactReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reply string
		want  Intent
	}{
		{"order_status", OrderStatus},
		{"  warranty_amc_queries\n", WarrantyAMCQueries},
		{"unknown", Unknown},
		{"general_queries", GeneralQueries},
	}
	for _, tt := range tests {
		c := NewLLMClassifier(func(_ context.Context, _, _ string) (string, error) {
			return tt.reply, nil
		})
		got, err := c.Classify(context.Background(), "anything")
		if err != nil {
			t.Fatalf("reply %q: unexpected error: %v", tt.reply, err)
		}
		if got.Intent != tt.want {
			t.Errorf("reply %q: Intent = %v; want %v", tt.reply, got.Intent, tt.want)
		}
		if got.Source != "model" {
			t.Errorf("Source = %q; want model", got.Source)
		}
	}
}

func TestLLMClassifier_OffScriptReply(t *testing.T) {
	t.Parallel()

	for _, reply := range []string{"Order_Status", "The intent is order_status", `{"intent":"order_status"}`, ""} {
		c := NewLLMClassifier(func(_ context.Context, _, _ string) (string, error) {
			return reply, nil
		})
		if _, err := c.Classify(context.Background(), "x"); err == nil {
			t.Errorf("reply %q: expected error", reply)
		}
	}
}

func TestLLMClassifier_CallError(t *testing.T) {
	t.Parallel()

	c := NewLLMClassifier(func(_ context.Context, _, _ string) (string, error) {
		return "", errors.New("connection refused")
	})
	_, err := c.Classify(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("err = %v; want wrapped connection refused", err)
	}
}

func TestLLMClassifier_Prompt(t *testing.T) {
	t.Parallel()

	var gotSystem, gotUser string
	c := NewLLMClassifier(func(_ context.Context, system, user string) (string, error) {
		gotSystem, gotUser = system, user
		return "order_status", nil
	})
	if _, err := c.Classify(context.Background(), "where is my order"); err != nil {
		t.Fatal(err)
	}
	if gotUser != "where is my order" {
		t.Errorf("user prompt = %q", gotUser)
	}
	for _, in := range Known() {
		if !strings.Contains(gotSystem, in.String()) {
			t.Errorf("system prompt missing %q", in.String())
		}
	}
	if strings.Contains(gotSystem, "unknown") {
		t.Error("system prompt must not offer unknown")
	}
}

type fakeCompleter struct {
	req  *ai.CompletionRequest
	text string
	err  error
}

func (f *fakeCompleter) Complete(_ context.Context, req *ai.CompletionRequest) (*ai.Completion, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{Text: f.text}, nil
}

func TestNewCompleterClassifier(t *testing.T) {
	t.Parallel()

	fc := &fakeCompleter{text: "complaint_registration"}
	c := NewCompleterClassifier(fc, "gpt-4o")

	got, err := c.Classify(context.Background(), "my monitor is broken")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Intent != ComplaintRegistration {
		t.Errorf("Intent = %v; want %v", got.Intent, ComplaintRegistration)
	}
	if fc.req.Model != "gpt-4o" || fc.req.Temperature != 0 || fc.req.MaxTokens != maxReplyTokens {
		t.Errorf("request = %+v; want gpt-4o at temperature 0", fc.req)
	}
	if fc.req.System != SystemPrompt {
		t.Error("request does not carry the classification prompt")
	}
}
