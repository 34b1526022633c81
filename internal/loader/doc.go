// Package loader reads raw documents (descriptor sets, OpenAPI documents,
// message values) from files, an fs.FS or HTTP and wraps them in a
// schema.Document. HTTP is disabled unless a client or fallback is configured.
package loader
