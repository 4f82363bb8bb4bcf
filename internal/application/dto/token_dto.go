package dto

// TokenResponse 令牌响应 DTO
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	IssuedAt    int64  `json:"issued_at"`
}
