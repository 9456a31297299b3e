package service

import (
	"fmt"
	"time"

	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 操作员认证服务
type AuthService struct {
	operatorRepo repository.OperatorRepository
	secret       []byte
	expire       time.Duration
}

// NewAuthService 创建认证服务
func NewAuthService(operatorRepo repository.OperatorRepository, secret string, expireHours int) *AuthService {
	if expireHours <= 0 {
		expireHours = 12
	}
	return &AuthService{
		operatorRepo: operatorRepo,
		secret:       []byte(secret),
		expire:       time.Duration(expireHours) * time.Hour,
	}
}

// OperatorClaims 操作员令牌声明
type OperatorClaims struct {
	OperatorID uint   `json:"operator_id"`
	Username   string `json:"username"`
	jwt.RegisteredClaims
}

// LoginResult 登录结果
type LoginResult struct {
	Token    string           `json:"token"`
	Operator *models.Operator `json:"operator"`
}

// Login 校验口令并签发令牌
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	operator, err := s.operatorRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if operator == nil {
		return nil, ErrInvalidCredentials
	}
	if !operator.IsActive {
		return nil, ErrOperatorDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := OperatorClaims{
		OperatorID: operator.ID,
		Username:   operator.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("operator:%d", operator.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expire)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Operator: operator}, nil
}

// ParseToken 解析并校验令牌
func (s *AuthService) ParseToken(tokenString string) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("意外的签名算法: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}
