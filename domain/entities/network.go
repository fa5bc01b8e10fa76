package entities

// NetworkRequest is an outbound request a program asks the host to make.
type NetworkRequest struct {
	Host string
	Port int
}
