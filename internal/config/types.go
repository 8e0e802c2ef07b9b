package config

// Config holds all tokenctl configuration.
type Config struct {
	Network        string `json:"network"         mapstructure:"network"`
	RPCURL         string `json:"rpc_url"         mapstructure:"rpc_url"` // overrides the network's RPC list
	DefaultWallet  string `json:"default_wallet"  mapstructure:"default_wallet"`
	LogLevel       string `json:"log_level"       mapstructure:"log_level"`
	ConfirmTimeout int    `json:"confirm_timeout" mapstructure:"confirm_timeout"` // seconds
	RPCAlgorithm   string `json:"rpc_algorithm"   mapstructure:"rpc_algorithm"`   // "fastest" | "failover"

	// internal: config dir path used for Save()
	configDir string
}
