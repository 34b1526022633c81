// Package schema defines the capability contract the reconciler needs from a
// structured value: a descriptor listing fields in declaration order, typed
// getters and setters for singular and repeated fields, nested access, and the
// clone/assign pair used for type-checked rebinding. Adapters for concrete
// schema technologies live in sibling packages (protomsg, openapi).
package schema
