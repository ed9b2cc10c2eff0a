// Package keymap binds the player screen's keys to actions.
package keymap

import (
	"slices"
	"strings"
)

// Action represents a user-triggerable action.
type Action string

const (
	ActionPlayPause Action = "play_pause"
	ActionNext      Action = "next"
	ActionPrevious  Action = "previous"
	ActionQuit      Action = "quit"
)

// Binding maps keys to an action.
type Binding struct {
	Action      Action
	Keys        []string // first key is the one shown in help
	Description string
}

// Player holds the bindings of the now-playing screen.
var Player = []Binding{
	{ActionPlayPause, []string{" "}, "play/pause"},
	{ActionNext, []string{"n", "right"}, "next"},
	{ActionPrevious, []string{"p", "left"}, "previous"},
	{ActionQuit, []string{"q", "ctrl+c", "esc"}, "quit"},
}

// Keymap looks up the action bound to a key press.
type Keymap struct {
	bindings []Binding
	byKey    map[string]Action
}

// New indexes bindings. When a key appears twice the later binding wins.
func New(bindings []Binding) *Keymap {
	km := &Keymap{
		bindings: bindings,
		byKey:    make(map[string]Action, len(bindings)*2),
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			km.byKey[key] = b.Action
		}
	}
	return km
}

// Action returns the action for a key as reported by bubbletea, or "" when
// the key is unbound.
func (km *Keymap) Action(key string) Action {
	return km.byKey[key]
}

// Keys lists the keys that still trigger action, in binding order.
func (km *Keymap) Keys(action Action) []string {
	var keys []string
	for _, b := range km.bindings {
		for _, key := range b.Keys {
			if km.byKey[key] == action && !slices.Contains(keys, key) {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// Help renders the bindings as a one-line legend.
func (km *Keymap) Help() string {
	parts := make([]string, 0, len(km.bindings))
	for _, b := range km.bindings {
		if len(b.Keys) == 0 {
			continue
		}
		parts = append(parts, keyLabel(b.Keys[0])+" "+b.Description)
	}
	return strings.Join(parts, " · ")
}

func keyLabel(key string) string {
	if key == " " {
		return "space"
	}
	return key
}
