package event

import "time"

type Event interface {
	Message() string
	OccurredAt() time.Time
	SessionID() string
}

type BaseEvent struct {
	message    string
	occurredAt time.Time
	sessionID  string
}

func (b BaseEvent) Message() string       { return b.message }
func (b BaseEvent) OccurredAt() time.Time { return b.occurredAt }
func (b BaseEvent) SessionID() string     { return b.sessionID }

func WithSession(sessionID, message string) BaseEvent {
	return BaseEvent{message: message, occurredAt: time.Now(), sessionID: sessionID}
}

func Text(message string) BaseEvent {
	return BaseEvent{message: message, occurredAt: time.Now()}
}

type SessionStartedEvent struct {
	BaseEvent
	Triplets int
}

func SessionStarted(be BaseEvent, triplets int) SessionStartedEvent {
	return SessionStartedEvent{BaseEvent: be, Triplets: triplets}
}

type TripletCompletedEvent struct {
	BaseEvent
	Index   int
	Total   int
	Triplet string
}

func TripletCompleted(be BaseEvent, index, total int, triplet string) TripletCompletedEvent {
	return TripletCompletedEvent{BaseEvent: be, Index: index, Total: total, Triplet: triplet}
}

type SessionFinishedEvent struct {
	BaseEvent
	Reason    string
	Completed int
	Err       error
}

func SessionFinished(be BaseEvent, reason string, completed int, err error) SessionFinishedEvent {
	return SessionFinishedEvent{BaseEvent: be, Reason: reason, Completed: completed, Err: err}
}

type BenchFoundEvent struct {
	BaseEvent
}

func BenchFound(be BaseEvent) BenchFoundEvent {
	return BenchFoundEvent{BaseEvent: be}
}

type BenchLostEvent struct {
	BaseEvent
	Reason string
}

func BenchLost(be BaseEvent, reason string) BenchLostEvent {
	return BenchLostEvent{BaseEvent: be, Reason: reason}
}
