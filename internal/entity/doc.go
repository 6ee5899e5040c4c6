// Package entity defines the metadata model that rules are evaluated
// against: attributes, data types, type profiles, operations and their
// steps, technology interfaces and attribute mappings.
//
// Nodes reference each other through plain pointers. The resulting graph is
// directed and may contain cycles (for example two attributes overriding each
// other); consumers that walk it must guard against that, see package visitor.
// The rule engine treats nodes as read-only.
package entity
