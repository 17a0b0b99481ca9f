package configsync

import (
	"context"
	"errors"
	"testing"

	"github.com/dmorante/acs-control-core/internal/infrastructure/mqtt"
)

// fakeIngester records telemetry dispatches.
type fakeIngester struct {
	calls []ingestCall
}

type ingestCall struct {
	mac     string
	payload string
}

func (f *fakeIngester) Ingest(_ context.Context, mac string, payload []byte) error {
	f.calls = append(f.calls, ingestCall{mac: mac, payload: string(payload)})
	return nil
}

// fakeRequester records config request dispatches.
type fakeRequester struct {
	macs []string
}

func (f *fakeRequester) HandleConfigRequest(_ context.Context, mac string) error {
	f.macs = append(f.macs, mac)
	return nil
}

func newTestRouter() (*Router, *fakeIngester, *fakeRequester) {
	ingester := &fakeIngester{}
	requester := &fakeRequester{}
	return NewRouter(context.Background(), ingester, requester, nil), ingester, requester
}

func TestHandleMessageDispatch(t *testing.T) {
	tests := []struct {
		name        string
		topic       string
		payload     string
		wantIngest  bool
		wantRequest bool
	}{
		{
			name:       "telemetry",
			topic:      "ACS_Control/AA:BB:CC:DD:EE:FF/Temperatura",
			payload:    `{"temperature": 22.5}`,
			wantIngest: true,
		},
		{
			name:        "config request",
			topic:       "ACS_Control/AA:BB:CC:DD:EE:FF/ConfigRequest",
			payload:     "1",
			wantRequest: true,
		},
		{
			name:        "config request with surrounding whitespace",
			topic:       "ACS_Control/AA:BB:CC:DD:EE:FF/ConfigRequest",
			payload:     " 1\n",
			wantRequest: true,
		},
		{
			// Only the literal "1" is a pull request; anything else on
			// the request topic falls through to telemetry handling.
			name:       "config request topic with other payload",
			topic:      "ACS_Control/AA:BB:CC:DD:EE:FF/ConfigRequest",
			payload:    "2",
			wantIngest: true,
		},
		{
			name:       "unknown suffix treated as telemetry",
			topic:      "ACS_Control/AA:BB:CC:DD:EE:FF/Humedad",
			payload:    `{"temperature": 20}`,
			wantIngest: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, ingester, requester := newTestRouter()

			if err := router.HandleMessage(tt.topic, []byte(tt.payload)); err != nil {
				t.Fatalf("HandleMessage() error = %v", err)
			}

			if tt.wantIngest && len(ingester.calls) != 1 {
				t.Errorf("ingest calls = %d, want 1", len(ingester.calls))
			}
			if !tt.wantIngest && len(ingester.calls) != 0 {
				t.Errorf("ingest calls = %d, want 0", len(ingester.calls))
			}
			if tt.wantRequest && len(requester.macs) != 1 {
				t.Errorf("request calls = %d, want 1", len(requester.macs))
			}
			if !tt.wantRequest && len(requester.macs) != 0 {
				t.Errorf("request calls = %d, want 0", len(requester.macs))
			}
		})
	}
}

func TestHandleMessageMalformedTopic(t *testing.T) {
	router, ingester, requester := newTestRouter()

	err := router.HandleMessage("ACS_Control/Temperatura", []byte(`{"temperature": 20}`))
	if !errors.Is(err, mqtt.ErrMalformedTopic) {
		t.Errorf("error = %v, want ErrMalformedTopic", err)
	}
	if len(ingester.calls) != 0 || len(requester.macs) != 0 {
		t.Error("malformed topic was dispatched instead of discarded")
	}
}

func TestHandleMessagePassesMAC(t *testing.T) {
	router, _, requester := newTestRouter()

	if err := router.HandleMessage("ACS_Control/aa:bb:cc:dd:ee:ff/ConfigRequest", []byte("1")); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if len(requester.macs) != 1 || requester.macs[0] != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("requester received %v, want [aa:bb:cc:dd:ee:ff]", requester.macs)
	}
}
