// Package registry resolves the child-agent registry file into reusable
// connectors. Discovery of bare endpoints fans out concurrently with
// independent timeouts; a failing endpoint is logged and dropped, never
// fatal to startup.
package registry
