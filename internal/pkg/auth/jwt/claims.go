package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims issued to a signed-in user.
type Payload struct {
	// StandardClaims embeds the registered fields (exp, iat, iss) checked during parsing.
	jwt.StandardClaims

	// ID is the user id the token was issued to.
	ID string `json:"id"`
}
