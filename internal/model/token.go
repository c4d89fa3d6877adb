package model

// TokenManager issues and validates bearer tokens for USSD gateways.
type TokenManager interface {
	GenerateGatewayToken(gatewayID string) (string, error)
	ParseGatewayToken(token string) (string, error)
}
