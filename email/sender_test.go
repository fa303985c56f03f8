package email

import (
	"strings"
	"testing"

	"Kestrel/Models"
)

func testConfig() Models.EmailConfig {
	return Models.EmailConfig{
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
		FromEmail:  "flota@example.com",
		FromName:   "Flota",
	}
}

func TestBuildMessagePlain(t *testing.T) {
	body, err := buildMessage(testConfig(), Models.EmailMessage{
		To:      []string{"dest@example.com"},
		Subject: "Prueba",
		Body:    "hola",
	})
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}

	message := string(body)
	if !strings.Contains(message, "From: Flota <flota@example.com>\r\n") {
		t.Error("missing From header")
	}
	if !strings.Contains(message, "Content-Type: text/plain; charset=UTF-8\r\n") {
		t.Error("plain message should stay single part")
	}
	if !strings.HasSuffix(message, "\r\n\r\nhola") {
		t.Errorf("body not terminated correctly: %q", message)
	}
}

func TestBuildMessageWithAttachment(t *testing.T) {
	body, err := buildMessage(testConfig(), Models.EmailMessage{
		To:      []string{"dest@example.com"},
		Subject: "Reporte",
		Body:    "<p>adjunto</p>",
		IsHTML:  true,
		Attachments: []Models.Attachment{{
			Filename: "reporte.pdf",
			Data:     []byte("%PDF-1.4 fake"),
			MimeType: "application/pdf",
		}},
	})
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}

	message := string(body)
	if !strings.Contains(message, "Content-Type: multipart/mixed; boundary=") {
		t.Error("attachment should switch the message to multipart/mixed")
	}
	if !strings.Contains(message, "Content-Type: text/html; charset=UTF-8") {
		t.Error("missing HTML part")
	}
	if !strings.Contains(message, `attachment; filename="reporte.pdf"`) {
		t.Error("missing attachment disposition")
	}
	if !strings.Contains(message, "Content-Transfer-Encoding: base64") {
		t.Error("attachment must be base64 encoded")
	}
}
