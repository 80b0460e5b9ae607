// Package protocol owns the concrete message types carried in datagrams.
//
// Ownership boundary:
// - text message wire format
// - tlv field primitives
// - datagram container framing
package protocol
