package crypto

// The OAuth2 specification (RFC 6749) doesn’t mandate a specific length for
// the state parameter. It recommends a random, unguessable string of at
// least 16 characters; 32 is common for better uniqueness.
const Oauth2StateLength = 32

// The state parameter helps prevent Cross-Site Request Forgery (CSRF) attacks
// by linking the authorization request to its callback.
func Oauth2State() string {
	return RandomString(Oauth2StateLength, AlphanumericAlphabet)
}
