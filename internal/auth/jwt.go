package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Audience usada em todos os tokens do console.
const Audience = "escritorio"

// Claims representa as informações presentes em um JWT de acesso.
type Claims struct {
	Nome  string   `json:"nome"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Identity é o usuário que executa a ação.
type Identity struct {
	Subject string
	Nome    string
	Roles   []string
}

// JWTManager encapsula geração e validação de tokens.
type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
}

// NewJWTManager cria o gerenciador com segredo e TTL configurados.
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL}
}

// GenerateAccessToken cria um JWT HS256 com claims padrão.
func (m *JWTManager) GenerateAccessToken(id Identity) (string, string, error) {
	if strings.TrimSpace(id.Subject) == "" {
		return "", "", errors.New("subject obrigatório")
	}
	now := time.Now().UTC()
	jti := uuid.NewString()

	claims := Claims{
		Nome:  id.Nome,
		Roles: id.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", err
	}

	return signed, jti, nil
}

// ParseAndValidate verifica assinatura, expiração e audience.
func (m *JWTManager) ParseAndValidate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(Audience),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("token inválido")
	}

	return claims, nil
}

// Identity converte as claims no usuário da requisição.
func (c *Claims) Identity() Identity {
	return Identity{Subject: c.Subject, Nome: c.Nome, Roles: c.Roles}
}
