package storage

import "github.com/pryvon/tempmail-cli/internal/mailtm"

type Storage struct {
	basePath        string
	credentialsPath string
}

// StoredSession is the on-disk session snapshot written after login.
type StoredSession struct {
	Token     string          `json:"token"`
	Account   *mailtm.Account `json:"account"`
	LastLogin int64           `json:"last_login"`
}

// StoredCredentials are the optionally saved login credentials.
type StoredCredentials struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}
