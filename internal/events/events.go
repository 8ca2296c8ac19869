package events

import (
	"context"

	"github.com/alfredjeanlab/appdeck/internal/model"
)

// TopicAll matches every catalog event on the bus.
const TopicAll = "deck.>"

// Event topic constants
const (
	TopicApplicationCreated = "deck.application.created"
	TopicApplicationUpdated = "deck.application.updated"
	TopicApplicationDeleted = "deck.application.deleted"

	TopicRepoPulled = "deck.repo.pulled"
	TopicRepoPushed = "deck.repo.pushed"

	// TopicCatalogChanged reports a catalog file changed on disk outside
	// the server, e.g. by hand or by git.
	TopicCatalogChanged = "deck.catalog.changed"
)

// Entry actions, combined with the entry kind by EntryTopic.
const (
	ActionCreated = "created"
	ActionRenamed = "renamed"
	ActionDeleted = "deleted"
)

// EntryTopic returns the topic for an action on a named entry list, e.g.
// "deck.component.renamed".
func EntryTopic(kind model.EntryKind, action string) string {
	return "deck." + kind.String() + "." + action
}

// Event types

type ApplicationCreated struct {
	Application *model.Application `json:"application"`
}

type ApplicationUpdated struct {
	Application *model.Application `json:"application"`
	// Previous identity, set only when the update renamed the application.
	PreviousName      string `json:"previous_name,omitempty"`
	PreviousNamespace string `json:"previous_namespace,omitempty"`
}

type ApplicationDeleted struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
}

type EntryCreated struct {
	Kind model.EntryKind `json:"kind"`
	Name string          `json:"name"`
}

type EntryRenamed struct {
	Kind    model.EntryKind `json:"kind"`
	OldName string          `json:"old_name"`
	NewName string          `json:"new_name"`
}

type EntryDeleted struct {
	Kind model.EntryKind `json:"kind"`
	Name string          `json:"name"`
}

// Repository events

type RepoPulled struct {
	Head   string `json:"head"`
	Output string `json:"output,omitempty"`
}

type RepoPushed struct {
	Head    string `json:"head"`
	Message string `json:"message"`
}

type CatalogChanged struct {
	Path string `json:"path"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
