// Package base provides building blocks shared by the concrete transport
// implementations: the bounded message queue with its advisory readiness
// pulse, and the wire frame codec used by stream transports.
package base
