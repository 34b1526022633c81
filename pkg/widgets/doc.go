// Package widgets defines the capability contracts the reconciler expects from
// property widgets (leaf editors and collapsible containers) and ships
// headless implementations of them. A Factory maps schema fields onto editor
// kinds using prioritised matchers.
package widgets
