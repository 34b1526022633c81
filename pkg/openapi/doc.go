// Package openapi adapts JSON/YAML data described by the component schemas of
// an OpenAPI 3 document to schema.Value, so the reconciler can edit REST
// payloads the same way it edits protobuf messages.
//
// Object schemas map to messages, arrays to repeated fields and string enums
// to enums. Properties are reported in lexical order because JSON objects have
// no declaration order. Maps (additionalProperties only), byte strings and
// nested arrays have no editor and report KindInvalid.
package openapi
