// Package tlsroots builds the trust store for outgoing TLS connections.
//
// The client trusts the system roots plus any CA bundle named in the
// configuration, which covers self-hosted Trainly deployments signed by a
// private CA.
package tlsroots
