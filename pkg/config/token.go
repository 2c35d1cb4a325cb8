package config

// TokenConf groups the settings the token manager needs.
type TokenConf struct {
	AccessTokenSecret      string
	RefreshTokenSecret     string
	AccessTokenExpiryHour  int
	RefreshTokenExpiryHour int
}

func NewTokenConf() TokenConf {
	cfg := GetConfig()
	return TokenConf{
		AccessTokenSecret:      cfg.Auth.AccessTokenSecret,
		RefreshTokenSecret:     cfg.Auth.RefreshTokenSecret,
		AccessTokenExpiryHour:  cfg.Auth.AccessTokenExpiryHour,
		RefreshTokenExpiryHour: cfg.Auth.RefreshTokenExpiryHour,
	}
}
