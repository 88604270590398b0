package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope type tags. Casing is part of the wire contract with the frontend:
// connection management tags are SCREAMING_SNAKE, event tags are PascalCase.
const (
	TypeConnectionInfo           = "CONNECTION_INFO"
	TypeRequestConnectionInfo    = "REQUEST_CONNECTION_INFO"
	TypeRequestActiveConnections = "REQUEST_ACTIVE_CONNECTIONS"
	TypeActiveConnections        = "ACTIVE_CONNECTIONS"
	TypePing                     = "Ping"
	TypePong                     = "Pong"
	TypeSubscribe                = "Subscribe"
	TypeUnsubscribe              = "Unsubscribe"
	TypeNavigationUpdated        = "NavigationUpdated"
	TypeDataUpdate               = "DataUpdate"
	TypeDebug                    = "Debug"
	TypeError                    = "Error"
	TypeCustom                   = "Custom"
)

// Envelope is the closed set of message kinds exchanged over a realtime
// connection. The concrete types below are the only implementations.
type Envelope interface {
	EnvelopeType() string
}

// ConnectionInfo is the server→client welcome payload. Its fields are
// flattened next to the type tag on the wire.
type ConnectionInfo struct {
	ConnectionID uuid.UUID `json:"connection_id"`
	IP           string    `json:"ip"`
	ConnectedAt  time.Time `json:"connectedAt"`
	UserAgent    string    `json:"user_agent,omitempty"`
}

// Ping and Pong are bare envelopes used both by the liveness supervisor and
// by clients probing the server.
type Ping struct{}
type Pong struct{}

// RequestConnectionInfo asks the hub to resend the requester's welcome payload.
type RequestConnectionInfo struct{}

// RequestActiveConnections asks the hub to resend the connection snapshot to
// the requester only.
type RequestActiveConnections struct{}

// Subscribe adds topics to the sender's subscription set.
type Subscribe struct {
	Topics []string `json:"topics"`
}

// Unsubscribe removes topics from the sender's subscription set.
type Unsubscribe struct {
	Topics []string `json:"topics"`
}

// ConnectionSummary is the per-connection view embedded in stats snapshots.
type ConnectionSummary struct {
	ID                uuid.UUID `json:"id"`
	IP                string    `json:"ip"`
	ConnectedDuration int64     `json:"connected_duration"`
	MessageCount      uint64    `json:"message_count"`
	BytesSent         uint64    `json:"bytes_sent"`
	BytesReceived     uint64    `json:"bytes_received"`
}

// ActiveConnections is the server→client stats snapshot.
type ActiveConnections struct {
	Count       int                 `json:"count"`
	Connections []ConnectionSummary `json:"connections"`
}

// NavigationUpdated notifies subscribers that a navigation schema changed.
type NavigationUpdated struct {
	Schema string          `json:"schema"`
	Data   json.RawMessage `json:"data"`
}

// DataUpdate carries a refresh for one data source.
type DataUpdate struct {
	Source    string          `json:"source"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Debug is a trace entry, both as stored in the ring buffer and as broadcast
// on the debug topic.
type Debug struct {
	Level     string          `json:"level"`
	Component string          `json:"component"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Error reports a per-connection failure back to the sender.
type Error struct {
	Message string  `json:"message"`
	Code    *int    `json:"code,omitempty"`
	Details *string `json:"details,omitempty"`
}

// Custom is the escape hatch for arbitrary JSON payloads keyed by event name.
// Event sits next to the type tag on the wire, not inside the payload.
type Custom struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func (ConnectionInfo) EnvelopeType() string           { return TypeConnectionInfo }
func (Ping) EnvelopeType() string                     { return TypePing }
func (Pong) EnvelopeType() string                     { return TypePong }
func (RequestConnectionInfo) EnvelopeType() string    { return TypeRequestConnectionInfo }
func (RequestActiveConnections) EnvelopeType() string { return TypeRequestActiveConnections }
func (Subscribe) EnvelopeType() string                { return TypeSubscribe }
func (Unsubscribe) EnvelopeType() string              { return TypeUnsubscribe }
func (ActiveConnections) EnvelopeType() string        { return TypeActiveConnections }
func (NavigationUpdated) EnvelopeType() string        { return TypeNavigationUpdated }
func (DataUpdate) EnvelopeType() string               { return TypeDataUpdate }
func (Debug) EnvelopeType() string                    { return TypeDebug }
func (Error) EnvelopeType() string                    { return TypeError }
func (Custom) EnvelopeType() string                   { return TypeCustom }

type taggedEnvelope struct {
	Type    string   `json:"type"`
	Payload Envelope `json:"payload"`
}

type bareEnvelope struct {
	Type string `json:"type"`
}

// Encode serializes an envelope into its wire form.
func Encode(env Envelope) ([]byte, error) {
	switch m := env.(type) {
	case ConnectionInfo:
		return json.Marshal(struct {
			Type string `json:"type"`
			ConnectionInfo
		}{TypeConnectionInfo, m})
	case Ping, Pong, RequestConnectionInfo, RequestActiveConnections:
		return json.Marshal(bareEnvelope{env.EnvelopeType()})
	case Custom:
		return json.Marshal(struct {
			Type    string          `json:"type"`
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}{TypeCustom, m.Event, m.Payload})
	case Subscribe, Unsubscribe, ActiveConnections, NavigationUpdated, DataUpdate, Debug, Error:
		return json.Marshal(taggedEnvelope{env.EnvelopeType(), env})
	default:
		return nil, fmt.Errorf("cannot encode envelope type %T", env)
	}
}

// Decode parses a wire frame into its envelope. An unknown type tag or a
// payload that does not match the tag's shape is an error.
func Decode(data []byte) (Envelope, error) {
	var probe struct {
		Type    string          `json:"type"`
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}

	switch probe.Type {
	case TypePing:
		return Ping{}, nil
	case TypePong:
		return Pong{}, nil
	case TypeRequestConnectionInfo:
		return RequestConnectionInfo{}, nil
	case TypeRequestActiveConnections:
		return RequestActiveConnections{}, nil
	case TypeConnectionInfo:
		var m ConnectionInfo
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", probe.Type, err)
		}
		return m, nil
	case TypeSubscribe:
		var m Subscribe
		if err := decodePayload(probe.Payload, &m); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", probe.Type, err)
		}
		return m, nil
	case TypeUnsubscribe:
		var m Unsubscribe
		if err := decodePayload(probe.Payload, &m); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", probe.Type, err)
		}
		return m, nil
	case TypeActiveConnections:
		var m ActiveConnections
		if err := decodePayload(probe.Payload, &m); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", probe.Type, err)
		}
		return m, nil
	case TypeNavigationUpdated:
		var m NavigationUpdated
		if err := decodePayload(probe.Payload, &m); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", probe.Type, err)
		}
		return m, nil
	case TypeDataUpdate:
		var m DataUpdate
		if err := decodePayload(probe.Payload, &m); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", probe.Type, err)
		}
		return m, nil
	case TypeDebug:
		var m Debug
		if err := decodePayload(probe.Payload, &m); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", probe.Type, err)
		}
		return m, nil
	case TypeError:
		var m Error
		if err := decodePayload(probe.Payload, &m); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", probe.Type, err)
		}
		return m, nil
	case TypeCustom:
		if probe.Event == "" {
			return nil, fmt.Errorf("custom envelope missing event name")
		}
		return Custom{Event: probe.Event, Payload: probe.Payload}, nil
	case "":
		return nil, fmt.Errorf("envelope missing type tag")
	default:
		return nil, fmt.Errorf("unknown envelope type %q", probe.Type)
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
