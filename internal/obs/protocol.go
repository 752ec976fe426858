package obs

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// Subprotocol is the websocket subprotocol for JSON-encoded messages.
const Subprotocol = "obswebsocket.json"

const rpcVersion = 1

// Message opcodes.
const (
	opHello           = 0
	opIdentify        = 1
	opIdentified      = 2
	opEvent           = 5
	opRequest         = 6
	opRequestResponse = 7
)

// subscriptionOutputs is the event-subscription bit for output events
// (recording, replay buffer, streaming).
const subscriptionOutputs = 1 << 6

// Host event names and the stopped output state.
const (
	eventRecordStateChanged = "RecordStateChanged"
	eventReplayBufferSaved  = "ReplayBufferSaved"
	outputStopped           = "OBS_WEBSOCKET_OUTPUT_STOPPED"
)

type envelope struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type helloData struct {
	OBSWebSocketVersion string `json:"obsWebSocketVersion"`
	RPCVersion          int    `json:"rpcVersion"`
	Authentication      *struct {
		Challenge string `json:"challenge"`
		Salt      string `json:"salt"`
	} `json:"authentication,omitempty"`
}

type identifyData struct {
	RPCVersion         int    `json:"rpcVersion"`
	Authentication     string `json:"authentication,omitempty"`
	EventSubscriptions int    `json:"eventSubscriptions"`
}

type identifiedData struct {
	NegotiatedRPCVersion int `json:"negotiatedRpcVersion"`
}

type eventData struct {
	EventType string          `json:"eventType"`
	EventData json.RawMessage `json:"eventData"`
}

type recordStateChanged struct {
	OutputActive bool   `json:"outputActive"`
	OutputState  string `json:"outputState"`
	OutputPath   string `json:"outputPath"`
}

type replayBufferSaved struct {
	SavedReplayPath string `json:"savedReplayPath"`
}

type requestData struct {
	RequestType string `json:"requestType"`
	RequestID   string `json:"requestId"`
	RequestData any    `json:"requestData,omitempty"`
}

type responseData struct {
	RequestType   string `json:"requestType"`
	RequestID     string `json:"requestId"`
	RequestStatus struct {
		Result  bool   `json:"result"`
		Code    int    `json:"code"`
		Comment string `json:"comment"`
	} `json:"requestStatus"`
	ResponseData json.RawMessage `json:"responseData"`
}

// authString answers the server's challenge:
// base64(sha256(base64(sha256(password+salt)) + challenge)).
func authString(password, salt, challenge string) string {
	secret := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secret[:])
	auth := sha256.Sum256([]byte(secretB64 + challenge))
	return base64.StdEncoding.EncodeToString(auth[:])
}

func encode(op int, d any) (envelope, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return envelope{}, err
	}
	return envelope{Op: op, D: raw}, nil
}

// decodeEvent maps a host event to an Event. ok is false for events that
// do not end a recording or save a replay.
func decodeEvent(ev eventData) (Event, bool) {
	switch ev.EventType {
	case eventRecordStateChanged:
		var d recordStateChanged
		if json.Unmarshal(ev.EventData, &d) != nil || d.OutputState != outputStopped {
			return Event{}, false
		}
		return Event{Kind: RecordingStopped, Type: ev.EventType, Path: d.OutputPath}, true
	case eventReplayBufferSaved:
		var d replayBufferSaved
		if json.Unmarshal(ev.EventData, &d) != nil {
			return Event{}, false
		}
		return Event{Kind: ReplaySaved, Type: ev.EventType, Path: d.SavedReplayPath}, true
	}
	return Event{}, false
}
