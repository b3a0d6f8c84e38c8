package indexing

import "strings"

// Topic classifies a change event as "{kind}/{action}", for example
// "products/create" or "collections/delete". The topic space is open:
// callers must match by prefix/suffix, never by closed enumeration.
type Topic string

// Kind returns the resource kind segment (everything before the first
// slash), or the whole topic when no slash is present.
func (t Topic) Kind() string {
	if i := strings.Index(string(t), "/"); i >= 0 {
		return string(t[:i])
	}
	return string(t)
}

// Action returns the action segment (everything after the last slash),
// or the whole topic when no slash is present.
func (t Topic) Action() string {
	if i := strings.LastIndex(string(t), "/"); i >= 0 {
		return string(t[i+1:])
	}
	return string(t)
}

// IsDeletion reports whether the topic denotes a delete action.
func (t Topic) IsDeletion() bool {
	return strings.HasSuffix(string(t), "delete")
}

// IsCreation reports whether the topic denotes a create action.
func (t Topic) IsCreation() bool {
	return strings.HasSuffix(string(t), "create")
}

// Sanitized returns the topic with slashes replaced by dashes, safe
// for use as a storage path segment.
func (t Topic) Sanitized() string {
	if t == "" {
		return "unknown"
	}
	return strings.ReplaceAll(string(t), "/", "-")
}
