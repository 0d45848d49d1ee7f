package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/anoixa/photo-gallery/config"
	"github.com/anoixa/photo-gallery/utils"
)

// SMTPConfig SMTP 连接参数
type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	SSL      bool
}

// SMTPConfigFrom 从全局配置读取
func SMTPConfigFrom(cfg *config.Config) SMTPConfig {
	return SMTPConfig{
		Enabled:  cfg.SMTPEnabled,
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		SSL:      cfg.SMTPSSL,
	}
}

// SMTPSender 通过 SMTP 发送邮件
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender 创建 SMTP 发送器
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send 发送邮件，未启用 SMTP 时只记录日志
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enabled || s.cfg.Host == "" {
		log.Printf("[Email] SMTP disabled, skip mail to %s: %s",
			utils.SanitizeLogEmail(msg.To), utils.SanitizeLogMessage(msg.Subject))
		return nil
	}

	fromHeader, fromAddr, err := parseAddressForHeader(s.cfg.From)
	if err != nil {
		return err
	}
	toHeader, toAddr, err := parseAddressForHeader(msg.To)
	if err != nil {
		return err
	}

	body, err := buildEmailMessage(fromHeader, toHeader, msg.Subject, msg.HTML)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))

	// SSL 通常是 465 端口，否则走 STARTTLS
	if s.cfg.SSL {
		return s.sendWithSSL(ctx, addr, auth, fromAddr, toAddr, body)
	}
	return smtp.SendMail(addr, auth, fromAddr, []string{toAddr}, body)
}

func (s *SMTPSender) sendWithSSL(ctx context.Context, addr string, auth smtp.Auth, from, to string, msg []byte) error {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 10 * time.Second},
		Config:    &tls.Config{ServerName: s.cfg.Host},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	// 不记录收件人，避免日志泄露
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close DATA: %w", err)
	}
	return client.Quit()
}

func parseAddressForHeader(input string) (string, string, error) {
	if err := rejectCRLF(input, "address"); err != nil {
		return "", "", err
	}
	addr, err := mail.ParseAddress(input)
	if err != nil {
		return "", "", err
	}
	return addr.String(), addr.Address, nil
}

func buildEmailMessage(fromHeader, toHeader, subject, body string) ([]byte, error) {
	if err := rejectCRLF(subject, "subject"); err != nil {
		return nil, err
	}
	// 主题 MIME 编码，避免非 ASCII 字符被拒收
	encodedSubject := mime.BEncoding.Encode("UTF-8", subject)
	dateStr := time.Now().Format(time.RFC1123Z)

	header := fmt.Sprintf("Date: %s\r\nFrom: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		dateStr, fromHeader, toHeader, encodedSubject)
	return []byte(header + body), nil
}

func rejectCRLF(value, field string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("invalid %s header: CRLF not allowed", field)
	}
	return nil
}
