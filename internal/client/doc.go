// Package client is a Go client for the scry-gen HTTP API. Client
// implements poll.Fetcher so a Synchronizer can track a generation over
// the network.
package client
