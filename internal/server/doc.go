// Package server exposes the cloud variable store over HTTP+JSON. It
// decodes and validates requests, delegates to the store, and maps the
// store's error kinds onto HTTP status codes. CORS is handled here so
// browser-hosted project clients can reach the API directly.
package server
