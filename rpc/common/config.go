package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Node configuration struct
// --------------------------------------------------------------------------

// NodeConfig holds all configuration parameters for one node
type NodeConfig struct {
	// Name is the node name, used for logging only
	Name string

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *NodeConfig) String() string {
	var sb strings.Builder

	addSection(&sb, "Node")
	addField(&sb, "Name", c.Name)

	addSection(&sb, "Logging")
	addField(&sb, "Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// Transport configuration struct
// --------------------------------------------------------------------------

// TCPConf holds TCP-specific socket options
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
}

// TransportConfig holds the transport selection and its parameters
type TransportConfig struct {
	// Kind selects the transport implementation ("inproc" or "tcp")
	Kind string

	// Endpoint is the address of the peer (tcp only); the service side
	// listens on it, the client side dials it
	Endpoint string

	// QueueSize is the per-endpoint inbound buffer size
	QueueSize int

	TCPConf TCPConf
}

// --------------------------------------------------------------------------
// Client/Service configuration structs
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters for a client endpoint
type ClientConfig struct {
	// Topic is the service name the client sends requests to
	Topic string

	// TimeoutSecond bounds a blocking wait on a response future (0 = none)
	TimeoutSecond int

	Transport TransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection(&sb, "Client Configuration")
	addField(&sb, "Topic", c.Topic)
	addField(&sb, "Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	addSection(&sb, "Transport")
	addField(&sb, "Kind", c.Transport.Kind)
	addField(&sb, "Endpoint", c.Transport.Endpoint)
	addField(&sb, "Queue Size", strconv.Itoa(c.Transport.QueueSize))

	return sb.String()
}

// ServiceConfig holds all configuration parameters for a service endpoint
type ServiceConfig struct {
	// Topic is the service name requests are received on
	Topic string

	// MetricsEndpoint is the optional address of the Prometheus metrics
	// listener (empty = disabled)
	MetricsEndpoint string

	// Logging configuration
	LogLevel string

	Transport TransportConfig
}

// String returns a formatted string representation of the service configuration
func (c *ServiceConfig) String() string {
	var sb strings.Builder

	addSection(&sb, "Service Configuration")
	addField(&sb, "Topic", c.Topic)
	addField(&sb, "Metrics Endpoint", c.MetricsEndpoint)

	addSection(&sb, "Transport")
	addField(&sb, "Kind", c.Transport.Kind)
	addField(&sb, "Endpoint", c.Transport.Endpoint)
	addField(&sb, "Queue Size", strconv.Itoa(c.Transport.QueueSize))

	addSection(&sb, "Logging")
	addField(&sb, "Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// Formatting helpers
// --------------------------------------------------------------------------

func addSection(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
}

func addField(sb *strings.Builder, name, value string) {
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
}
