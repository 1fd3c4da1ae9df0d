package mail

import (
	"bytes"
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/config"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/booking"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/event"
)

// TicketRenderer はチェックイントークンからQRチケット画像を生成する
type TicketRenderer interface {
	RenderTicket(bookingID, eventID string) ([]byte, error)
}

// Mailer は予約確認メールを送信する
type Mailer struct {
	client   *gomail.Client
	from     string
	renderer TicketRenderer
}

// NewMailer は新しいMailerを作成する
func NewMailer(cfg *config.MailConfig, renderer TicketRenderer) (*Mailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("SMTPクライアント作成に失敗しました: %w", err)
	}

	return &Mailer{client: client, from: cfg.From, renderer: renderer}, nil
}

// SendBookingConfirmation は予約確認メールをQRチケット付きで送信する
func (m *Mailer) SendBookingConfirmation(ctx context.Context, b *booking.Booking, e *event.Event) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("差出人の設定に失敗しました: %w", err)
	}
	if err := msg.To(b.Email); err != nil {
		return fmt.Errorf("宛先の設定に失敗しました: %w", err)
	}

	msg.Subject(fmt.Sprintf("予約確認: %s", e.Title))
	msg.SetBodyString(gomail.TypeTextPlain, m.body(b, e))

	if m.renderer != nil {
		png, err := m.renderer.RenderTicket(b.ID, b.EventID)
		if err != nil {
			return fmt.Errorf("QRチケット生成に失敗しました: %w", err)
		}
		msg.AttachReader("ticket.png", bytes.NewReader(png))
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("メール送信に失敗しました: %w", err)
	}
	return nil
}

func (m *Mailer) body(b *booking.Booking, e *event.Event) string {
	return fmt.Sprintf(
		"%s %s 様\n\n「%s」のご予約を受け付けました。\n\n枚数: %d\n会場: %s\n開始: %s\n\n添付のQRコードを入場時にご提示ください。\n",
		b.Name, b.Surname, e.Title, b.Quantity, e.Location, e.StartAt.Format("2006-01-02 15:04"),
	)
}
