package ports

// DenialHandler is notified when a policy refuses a request.
type DenialHandler interface {
	OnDenial(kind string, request any, reason string)
}
