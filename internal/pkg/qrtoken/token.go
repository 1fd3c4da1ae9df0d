package qrtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// トークン検証のエラー定義
var (
	ErrInvalidToken = errors.New("トークンが不正です")
	ErrTokenExpired = errors.New("トークンの有効期限が切れています")
)

// Claims はチェックイントークンに埋め込むクレームを表す
type Claims struct {
	BookingID string `json:"booking_id"`
	EventID   string `json:"event_id"`
	jwt.RegisteredClaims
}

// Issuer はチェックイントークンの発行と検証を行う
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer は新しいIssuerを作成する
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue は予約IDとイベントIDから署名付きトークンを発行する
func (i *Issuer) Issue(bookingID, eventID string) (string, error) {
	now := time.Now()
	claims := Claims{
		BookingID: bookingID,
		EventID:   eventID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("トークン署名に失敗しました: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証しクレームを返す
// 予約IDの一致確認は呼び出し側（チェックインプロトコル）の責務
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("不正な署名方式です: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.BookingID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
