package config

const (
	MaxExtractBodyBytes  = 16 * 1024       // 16KB
	MaxValidateBodyBytes = 1 * 1024 * 1024 // 1MB
	MaxOutputTokens      = 8192
	MaxAddressLength     = 300
)
