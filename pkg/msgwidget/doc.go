// Package msgwidget is the property editor engine. A MessageWidget keeps a
// private copy of a schema-described value, materializes editors for it on
// demand as containers are expanded, applies hidden and read-only policy to
// every widget it creates and writes user edits back into the value.
//
// Properties are addressed by scoped paths such as "header::stamp::sec" or
// "plugins::2::name". Policy recorded for a family name ("plugins::name")
// also applies to repetitions that do not exist yet.
package msgwidget
