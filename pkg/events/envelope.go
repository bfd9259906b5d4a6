package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the wire form of an event on the in-process bus and on the
// external brokers.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

var registry = map[string]func() Event{
	TypeResponseCompleted:    func() Event { return &ResponseCompleted{} },
	TypeResponseApproved:     func() Event { return &ResponseApproved{} },
	TypeResponseRejected:     func() Event { return &ResponseRejected{} },
	TypeResponseReset:        func() Event { return &ResponseReset{} },
	TypeResponsesReaped:      func() Event { return &ResponsesReaped{} },
	TypeSurveyAutoPaused:     func() Event { return &SurveyAutoPaused{} },
	TypeSurveyResumed:        func() Event { return &SurveyResumed{} },
	TypeWithdrawalSubmitted:  func() Event { return &WithdrawalChanged{} },
	TypeWithdrawalCancelled:  func() Event { return &WithdrawalChanged{} },
	TypeWithdrawalApproved:   func() Event { return &WithdrawalChanged{} },
	TypeWithdrawalProcessing: func() Event { return &WithdrawalChanged{} },
	TypeWithdrawalRejected:   func() Event { return &WithdrawalChanged{} },
	TypeWithdrawalCompleted:  func() Event { return &WithdrawalChanged{} },
}

func Encode(e Event) ([]byte, error) {
	var body interface{} = e
	if base, ok := e.(BaseEvent); ok {
		body = base.Data
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", e.EventType(), err)
	}
	return json.Marshal(Envelope{
		Type:       e.EventType(),
		OccurredAt: e.Timestamp(),
		Data:       data,
	})
}

// Decode rebuilds a typed event. Registered types decode to a pointer to
// their struct; anything else becomes a BaseEvent.
func Decode(raw []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	factory, ok := registry[env.Type]
	if !ok {
		var data map[string]interface{}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
			}
		}
		return BaseEvent{Type: env.Type, Data: data, OccurredAt: env.OccurredAt}, nil
	}

	e := factory()
	if err := json.Unmarshal(env.Data, e); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return e, nil
}
