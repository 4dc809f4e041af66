package amqp

import (
	"testing"
	"time"
)

func TestRataPagataMessageRoundTrip(t *testing.T) {
	msg := NewRataPagataMessage(42, 7)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := RataPagataMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.RataID != 42 || got.PagamentoID != 7 {
		t.Errorf("got rata=%d pagamento=%d, want 42/7", got.RataID, got.PagamentoID)
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Errorf("timestamp not preserved: %v", got.Timestamp)
	}
}

func TestRataPagataMessageFromJSONInvalid(t *testing.T) {
	if _, err := RataPagataMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
