package domain

// TokenPair is what issuing or refreshing returns: a signed access token and
// the opaque refresh secret bound to it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TemporaryTokenRecord is the stored value behind a temporary token id.
type TemporaryTokenRecord struct {
	UserID string `json:"user_id"`
	Usage  string `json:"usage"`
}
