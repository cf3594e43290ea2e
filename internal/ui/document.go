// Package ui implements the client's presentation helpers: a transient alert
// banner and a loading spinner, kept as nodes of an in-memory Document that a
// renderer mirrors to the terminal.
package ui

import (
	"slices"
	"strings"
	"sync"
)

// Node is one element of the Document.
type Node struct {
	ID    string
	Class string
	Text  string
}

// HasClass reports whether the node's space-separated class list contains class.
func (n *Node) HasClass(class string) bool {
	return slices.Contains(strings.Fields(n.Class), class)
}

// ChangeKind says what happened to a node.
type ChangeKind int

const (
	NodeInserted ChangeKind = iota
	NodeRemoved
)

// Observer is notified after every change to the Document.
type Observer func(kind ChangeKind, n *Node)

// Document is an ordered list of nodes standing in for the page's main container.
// Safe for concurrent use; observers run outside the lock.
type Document struct {
	mu        sync.Mutex
	nodes     []*Node
	observers []Observer
}

// NewDocument creates an empty Document.
func NewDocument() *Document {
	return &Document{}
}

// Observe registers fn to be called after every insert or remove.
func (d *Document) Observe(fn Observer) {
	d.mu.Lock()
	d.observers = append(d.observers, fn)
	d.mu.Unlock()
}

// Prepend inserts n as the first node.
func (d *Document) Prepend(n *Node) {
	d.mu.Lock()
	d.nodes = slices.Insert(d.nodes, 0, n)
	observers := slices.Clone(d.observers)
	d.mu.Unlock()

	notify(observers, NodeInserted, n)
}

// Append inserts n as the last node.
func (d *Document) Append(n *Node) {
	d.mu.Lock()
	d.nodes = append(d.nodes, n)
	observers := slices.Clone(d.observers)
	d.mu.Unlock()

	notify(observers, NodeInserted, n)
}

// Remove detaches n. Returns false if n is not in the Document.
func (d *Document) Remove(n *Node) bool {
	d.mu.Lock()
	i := slices.Index(d.nodes, n)
	if i < 0 {
		d.mu.Unlock()
		return false
	}
	d.nodes = slices.Delete(d.nodes, i, i+1)
	observers := slices.Clone(d.observers)
	d.mu.Unlock()

	notify(observers, NodeRemoved, n)
	return true
}

// QueryClass returns the first node carrying class, or nil.
func (d *Document) QueryClass(class string) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range d.nodes {
		if n.HasClass(class) {
			return n
		}
	}
	return nil
}

// GetByID returns the first node with the given id, or nil.
func (d *Document) GetByID(id string) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range d.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Nodes returns a snapshot of the Document's nodes in order.
func (d *Document) Nodes() []*Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.nodes)
}

func notify(observers []Observer, kind ChangeKind, n *Node) {
	for _, fn := range observers {
		fn(kind, n)
	}
}
