// Package transport builds the HTTP client shared by the fetcher and the
// submitter. Every request it sends carries the API key header; the key is
// resolved once by the caller and passed in, never read from the environment
// here.
package transport
