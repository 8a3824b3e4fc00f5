package view

import (
	"sort"
	"sync"
)

// element is one addressable node of the dashboard page.
type element struct {
	ID      string
	Content string
	IsHTML  bool
	Value   string
	Classes map[string]bool
	Styles  map[string]string
}

// ElementSnapshot is the immutable, serialisable form of an element.
type ElementSnapshot struct {
	ID      string            `json:"id"`
	Content string            `json:"content"`
	IsHTML  bool              `json:"is_html"`
	Value   string            `json:"value,omitempty"`
	Classes []string          `json:"classes,omitempty"`
	Styles  map[string]string `json:"styles,omitempty"`
}

// Snapshot is a copy of the whole document at a given version.
type Snapshot struct {
	Version  uint64                     `json:"version"`
	Elements map[string]ElementSnapshot `json:"elements"`
}

// Document is the element tree the dashboard renders into. Unknown ids are
// ignored by the setters, the way a missing DOM node would make the write a
// no-op; Has reports whether an id exists.
type Document struct {
	mu       sync.RWMutex
	version  uint64
	order    []string
	elements map[string]*element
}

func NewDocument() *Document {
	return &Document{elements: make(map[string]*element)}
}

// Add registers an element with optional initial classes. Adding an existing
// id resets it.
func (d *Document) Add(id string, classes ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.elements[id]; !ok {
		d.order = append(d.order, id)
	}
	el := &element{ID: id, Classes: make(map[string]bool), Styles: make(map[string]string)}
	for _, c := range classes {
		el.Classes[c] = true
	}
	d.elements[id] = el
	d.version++
}

func (d *Document) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.elements[id]
	return ok
}

func (d *Document) mutate(id string, fn func(*element)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.elements[id]
	if !ok {
		return
	}
	fn(el)
	d.version++
}

// SetText replaces the element content with plain text.
func (d *Document) SetText(id, text string) {
	d.mutate(id, func(el *element) {
		el.Content = text
		el.IsHTML = false
	})
}

// SetHTML replaces the element content with markup, used as-is.
func (d *Document) SetHTML(id, html string) {
	d.mutate(id, func(el *element) {
		el.Content = html
		el.IsHTML = true
	})
}

func (d *Document) SetValue(id, value string) {
	d.mutate(id, func(el *element) { el.Value = value })
}

func (d *Document) SetStyle(id, prop, value string) {
	d.mutate(id, func(el *element) { el.Styles[prop] = value })
}

func (d *Document) AddClass(id, class string) {
	d.mutate(id, func(el *element) { el.Classes[class] = true })
}

func (d *Document) RemoveClass(id, class string) {
	d.mutate(id, func(el *element) { delete(el.Classes, class) })
}

func (d *Document) Text(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if el, ok := d.elements[id]; ok {
		return el.Content
	}
	return ""
}

func (d *Document) Value(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if el, ok := d.elements[id]; ok {
		return el.Value
	}
	return ""
}

func (d *Document) Style(id, prop string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if el, ok := d.elements[id]; ok {
		return el.Styles[prop]
	}
	return ""
}

func (d *Document) HasClass(id, class string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if el, ok := d.elements[id]; ok {
		return el.Classes[class]
	}
	return false
}

// ByClass returns the ids carrying class, in insertion order.
func (d *Document) ByClass(class string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []string
	for _, id := range d.order {
		if d.elements[id].Classes[class] {
			out = append(out, id)
		}
	}
	return out
}

// Version increases on every successful mutation.
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := Snapshot{Version: d.version, Elements: make(map[string]ElementSnapshot, len(d.elements))}
	for id, el := range d.elements {
		es := ElementSnapshot{ID: id, Content: el.Content, IsHTML: el.IsHTML, Value: el.Value}
		for c := range el.Classes {
			es.Classes = append(es.Classes, c)
		}
		sort.Strings(es.Classes)
		if len(el.Styles) > 0 {
			es.Styles = make(map[string]string, len(el.Styles))
			for k, v := range el.Styles {
				es.Styles[k] = v
			}
		}
		out.Elements[id] = es
	}
	return out
}
