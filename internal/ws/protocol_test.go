package ws

import (
	"encoding/json"
	"testing"
)

func TestParseClientRequest(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantErr    bool
		wantAction string
		wantTicker string
	}{
		{"subscribe", `{"action":"subscribe","ticker":"SPY"}`, false, "subscribe", "SPY"},
		{"ping without ticker", `{"action":"ping"}`, false, "ping", ""},
		{"missing action", `{"ticker":"SPY"}`, true, "", ""},
		{"not json", `subscribe SPY`, true, "", ""},
		{"empty", ``, true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parseClientRequest([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseClientRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if req.Action != tt.wantAction {
				t.Errorf("Action = %q, want %q", req.Action, tt.wantAction)
			}
			if req.Ticker != tt.wantTicker {
				t.Errorf("Ticker = %q, want %q", req.Ticker, tt.wantTicker)
			}
		})
	}
}

func TestBuildEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want string
	}{
		{"connected", buildConnectedMessage("abc"), `{"type":"connected","conn_id":"abc"}`},
		{"subscribed", buildSubscribedMessage("SPY"), `{"type":"subscribed","ticker":"SPY"}`},
		{"unsubscribed", buildUnsubscribedMessage("SPY"), `{"type":"unsubscribed","ticker":"SPY"}`},
		{"pong", buildPongMessage(), `{"type":"pong"}`},
		{"error", buildErrorMessage("nope"), `{"type":"error","error":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.got) != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestBuildAnalysisMessageEmbedsPayload(t *testing.T) {
	payload := json.RawMessage(`{"spot":100.5}`)
	frame := buildAnalysisMessage("SPY", payload)

	var msg serverMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	if msg.Type != "analysis" || msg.Ticker != "SPY" {
		t.Errorf("envelope = %+v", msg)
	}
	if string(msg.Data) != `{"spot":100.5}` {
		t.Errorf("Data = %s, want embedded payload", msg.Data)
	}
}
