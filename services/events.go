package services

import "github.com/Dosada05/tournament-arena/brackets"

// EventPublisher fans bracket changes out to live viewers. *brackets.Hub implements it.
type EventPublisher interface {
	Publish(tournamentID, eventType string, payload interface{})
}

var _ EventPublisher = (*brackets.Hub)(nil)

type noopPublisher struct{}

func (noopPublisher) Publish(string, string, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
