package ws

import (
	"encoding/json"
	"fmt"
)

// clientRequest is the only inbound message shape. Action is one of
// subscribe, unsubscribe or ping.
type clientRequest struct {
	Action string `json:"action"`
	Ticker string `json:"ticker,omitempty"`
}

// serverMessage is the outbound envelope for every frame the hub sends.
type serverMessage struct {
	Type   string          `json:"type"`
	Ticker string          `json:"ticker,omitempty"`
	ConnID string          `json:"conn_id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func parseClientRequest(data []byte) (*clientRequest, error) {
	var req clientRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("unmarshal client request: %w", err)
	}
	if req.Action == "" {
		return nil, fmt.Errorf("client request has no action")
	}
	return &req, nil
}

// buildConnectedMessage greets a freshly upgraded connection.
func buildConnectedMessage(connID string) []byte {
	return marshalEnvelope(serverMessage{Type: "connected", ConnID: connID})
}

func buildSubscribedMessage(ticker string) []byte {
	return marshalEnvelope(serverMessage{Type: "subscribed", Ticker: ticker})
}

func buildUnsubscribedMessage(ticker string) []byte {
	return marshalEnvelope(serverMessage{Type: "unsubscribed", Ticker: ticker})
}

func buildPongMessage() []byte {
	return marshalEnvelope(serverMessage{Type: "pong"})
}

func buildErrorMessage(msg string) []byte {
	return marshalEnvelope(serverMessage{Type: "error", Error: msg})
}

// buildAnalysisMessage wraps an already encoded analysis payload.
func buildAnalysisMessage(ticker string, analysis json.RawMessage) []byte {
	return marshalEnvelope(serverMessage{Type: "analysis", Ticker: ticker, Data: analysis})
}

// Envelope fields are plain strings and pre-encoded JSON, so encoding
// cannot fail.
func marshalEnvelope(msg serverMessage) []byte {
	data, _ := json.Marshal(msg)
	return data
}
