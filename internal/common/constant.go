package common

// SessionTokenHeaderName is the gRPC metadata key used to carry the
// session bearer token on outbound requests.
const SessionTokenHeaderName = "session_token"

// UserAgentHeaderName carries the client agent string recorded on sessions.
const UserAgentHeaderName = "x-user-agent"

// Provider kinds stored in accounts.provider_id.
const (
	ProviderPassword = "password"
	ProviderPasskey  = "passkey"
)

// Password length bounds enforced on sign-up.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)
