//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Connection is one live client as seen by the registry and the broadcaster.
// Consume must not block on a slow peer.
type Connection interface {
	Consume(ctx context.Context, e event.DomainEvent) error
	Close() error
	RemoteAddr() string
}

type IRegistry interface {
	Register(conn Connection) domain.ConnectionID
	Deregister(id domain.ConnectionID)
	ForEachLive(action func(id domain.ConnectionID, conn Connection))
	Count() int
}

type IBroadcaster interface {
	Submit(ctx context.Context, raw []byte, from domain.ConnectionID) error
}
