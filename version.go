// Package tsrun holds metadata shared by the tsrun binary and server.
package tsrun

// Version is the tsrun release version, reported during the MCP
// handshake and by the version subcommand.
const Version = "0.1.0"
