package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func counterValue(t *testing.T, c *Collector, name string) float64 {
	t.Helper()
	mfs, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if m.GetCounter() != nil {
				total += m.GetCounter().GetValue()
			}
			if m.GetGauge() != nil {
				total += m.GetGauge().GetValue()
			}
		}
		return total
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.ConnOpened()
	c.ConnOpened()
	c.ConnClosed()
	c.RecordEvent("send_message")
	c.RecordMessage("text")
	c.RecordMessage("file")
	c.RecordInviteIssued()
	c.RecordInviteRejected("Link expired")
	c.RecordFrameDropped()

	if got := counterValue(t, c, "parley_connections"); got != 1 {
		t.Errorf("connections = %v, want 1", got)
	}
	if got := counterValue(t, c, "parley_messages_total"); got != 2 {
		t.Errorf("messages = %v, want 2", got)
	}
	if got := counterValue(t, c, "parley_invites_rejected_total"); got != 1 {
		t.Errorf("rejected = %v, want 1", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.RecordInviteIssued()

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "parley_invites_issued_total 1") {
		t.Errorf("exposition missing counter:\n%s", body)
	}
}
