package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prisonrp/ruleswiki/pkg/config"
	"github.com/prisonrp/ruleswiki/pkg/logging"
)

func TestNewReturnsNoopWithoutURL(t *testing.T) {
	n := New(&config.DiscordConfig{})
	if _, ok := n.(Noop); !ok {
		t.Errorf("expected Noop notifier, got %T", n)
	}
}

func TestRuleApprovedPayload(t *testing.T) {
	var received webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := &DiscordWebhook{
		url:    srv.URL,
		client: &http.Client{Timeout: time.Second},
		logger: logging.GetLogger(),
	}
	d.RuleApproved(context.Background(), "A.1", "No RDM")

	if len(received.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(received.Embeds))
	}
	if !strings.Contains(received.Embeds[0].Title, "A.1") {
		t.Errorf("embed title should carry the rule code, got %q", received.Embeds[0].Title)
	}
	if received.Embeds[0].Description != "No RDM" {
		t.Errorf("embed description = %q", received.Embeds[0].Description)
	}
}

func TestWebhookFailureDoesNotPanic(t *testing.T) {
	d := &DiscordWebhook{
		url:    "http://127.0.0.1:1", // nothing listens here
		client: &http.Client{Timeout: 100 * time.Millisecond},
		logger: logging.GetLogger(),
	}
	// Delivery failures are swallowed; this must simply return
	d.AnnouncementApproved(context.Background(), "maintenance window")
}
