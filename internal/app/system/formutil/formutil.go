// Package formutil provides helpers for forms whose whole state travels in
// the post.
//
// A form that is edited over several round trips (add a row, remove a row,
// save) re-renders the values the user entered each time. The helpers here
// read those values back in order and decode which button was pressed.
//
// Example usage:
//
//	<input name="point" value="{{.Value}}">           // repeated, order kept
//	<button name="action" value="add">Add</button>
//	<button name="action" value="remove:{{.Index}}">Remove</button>
//
//	points := formutil.Values(r.PostForm, "point")
//	act := formutil.ParseAction(r.PostForm.Get("action"), "save")
package formutil

import (
	"net/url"
	"strconv"
	"strings"
)

// Action is a decoded submit-button value of the form "name" or
// "name:index".
type Action struct {
	Name  string
	Index int // -1 when the action carries no index
}

// ParseAction decodes a submit-button value. An empty value, as sent when
// the form is submitted with the Enter key and no default button, decodes
// to defaultAction.
func ParseAction(raw string, defaultAction string) Action {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Action{Name: defaultAction, Index: -1}
	}
	name, idx, found := strings.Cut(raw, ":")
	if !found {
		return Action{Name: name, Index: -1}
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return Action{Name: name, Index: -1}
	}
	return Action{Name: name, Index: n}
}

// Values returns the values posted under key in document order. It never
// returns nil, so an absent field reads as an empty list.
func Values(form url.Values, key string) []string {
	return append([]string{}, form[key]...)
}

// Value returns the first value posted under key, untrimmed, and whether the
// field was present at all.
func Value(form url.Values, key string) (string, bool) {
	vs, ok := form[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
