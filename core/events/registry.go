package events

import "proptix/core/types"

const (
	// TypeCollectionCreated is emitted when the registry deploys a new sale
	// engine instance.
	TypeCollectionCreated = "registry.collection.created"
)

type CollectionCreated struct {
	Owner      [20]byte
	Collection [20]byte
	Name       string
	ClassID    string
}

func (CollectionCreated) EventType() string { return TypeCollectionCreated }

func (e CollectionCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeCollectionCreated,
		Attributes: map[string]string{
			"owner":      addrString(e.Owner),
			"collection": addrString(e.Collection),
			"name":       e.Name,
			"classId":    e.ClassID,
		},
	}
}
