package accountsvc

// AccountConfig contains configuration parameters for the account service.
type AccountConfig struct {
	// BcryptCost is the work factor of password hashes (4..31)
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}
