package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"mime/quotedprintable"
	"net/smtp"
	"net/textproto"

	"github.com/kelseyhightower/envconfig"
)

// SMTPNotifierConfig is read from MEMBERD_SMTP_* environment variables.
type SMTPNotifierConfig struct {
	Host     string `required:"true"`
	Port     int    `default:"587"`
	Username string
	Password string
	From     string `default:"noreply@crewdesk.io"`
}

func (c SMTPNotifierConfig) address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c SMTPNotifierConfig) auth() smtp.Auth {
	if c.Username == "" {
		return nil
	}
	return smtp.PlainAuth("", c.Username, c.Password, c.Host)
}

// SMTPNotifier sends multipart text+HTML mail through a plain SMTP relay.
// Intended for local development and self-hosted deployments.
type SMTPNotifier struct {
	config SMTPNotifierConfig
}

func NewSMTPNotifier() (*SMTPNotifier, error) {
	var config SMTPNotifierConfig
	if err := envconfig.Process("MEMBERD_SMTP", &config); err != nil {
		return nil, err
	}
	return &SMTPNotifier{config: config}, nil
}

func (n *SMTPNotifier) Send(_ context.Context, msg Message) error {
	if msg.To == "" || msg.Subject == "" {
		return fmt.Errorf("notify: message missing recipient or subject")
	}

	encoded, err := encodeMessage(n.config.From, msg)
	if err != nil {
		return err
	}

	return smtp.SendMail(n.config.address(), n.config.auth(), n.config.From, []string{msg.To}, encoded)
}

func encodeMessage(from string, msg Message) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	fmt.Fprintf(buf, "From: %s\r\n", from)
	fmt.Fprintf(buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(buf, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", writer.Boundary())

	textHeaders := textproto.MIMEHeader{}
	textHeaders.Add("Content-Type", "text/plain; charset=UTF-8")
	textHeaders.Add("Content-Transfer-Encoding", "7bit")
	textPart, err := writer.CreatePart(textHeaders)
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(msg.Text)); err != nil {
		return nil, err
	}

	htmlHeaders := textproto.MIMEHeader{}
	htmlHeaders.Add("Content-Type", "text/html; charset=UTF-8")
	htmlHeaders.Add("Content-Transfer-Encoding", "quoted-printable")
	htmlPart, err := writer.CreatePart(htmlHeaders)
	if err != nil {
		return nil, err
	}

	qp := &bytes.Buffer{}
	qpWriter := quotedprintable.NewWriter(qp)
	if _, err := qpWriter.Write([]byte(msg.HTML)); err != nil {
		return nil, err
	}
	if err := qpWriter.Close(); err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write(qp.Bytes()); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
