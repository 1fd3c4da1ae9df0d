package qrtoken

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRサイズ（ピクセル）
const qrImageSize = 256

// RenderTicket は署名付きトークンを発行しQRコードPNGとして描画する
func (i *Issuer) RenderTicket(bookingID, eventID string) ([]byte, error) {
	token, err := i.Issue(bookingID, eventID)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(token, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("QRコード生成に失敗しました: %w", err)
	}
	return png, nil
}
