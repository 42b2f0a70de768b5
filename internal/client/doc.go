// Package client implements the query client for the remote autocomplete
// service.
//
// A Client issues one GET request per prefix:
//
//	GET <endpoint>?query=<prefix>
//
// and decodes the "names" field of the JSON response. Fetch never returns
// an error: transport failures, non-2xx statuses and malformed bodies are
// logged and reported as an empty result, which the crawler treats as the
// end of that branch. There are no retries.
//
// Queries can optionally be routed through a SOCKS5 proxy.
package client
