// Package protomsg adapts protobuf messages to the schema.Value contract using
// the protoreflect API, so generated and dynamic (dynamicpb) messages can both
// drive the reconciler.
//
// Dynamic messages come from a binary FileDescriptorSet (LoadDescriptorSet +
// NewMessage); generated messages are adapted directly with Wrap. Maps and
// bytes fields report schema.KindInvalid and are skipped by the reconciler.
package protomsg
