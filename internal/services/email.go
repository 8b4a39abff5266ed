package services

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"

	"photofolio_api/internal/models"
)

// EmailService sends transactional mail over plain SMTP.
type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

func NewEmailService() *EmailService {
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		user:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASS"),
		from:     os.Getenv("EMAIL_FROM"),
	}
}

func (s *EmailService) send(to, replyTo, fromName, subject, htmlBody string) error {
	if s.host == "" || s.port == "" || s.user == "" || s.password == "" {
		return fmt.Errorf("SMTP credentials not fully configured")
	}

	from := s.from
	if from == "" {
		from = s.user
	}

	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %q <%s>\r\n", fromName, from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	if replyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendContactEmail relays a contact-form submission to the studio inbox.
func (s *EmailService) SendContactEmail(name, email, message string) error {
	body := fmt.Sprintf(`
		<h2>New contact message</h2>
		<p><strong>Name:</strong> %s</p>
		<p><strong>Email:</strong> %s</p>
		<p><strong>Message:</strong></p>
		<p>%s</p>`,
		name, email, strings.ReplaceAll(message, "\n", "<br>"))

	return s.send(s.user, email, "Contact", fmt.Sprintf("New contact from %s", name), body)
}

// BookingEmailDetails carries the resolved facts of a completed or confirmed
// booking for the notification templates.
type BookingEmailDetails struct {
	CustomerName  string
	CustomerEmail string
	Amount        string // already formatted with currency symbol
	PackageName   string
	PaymentType   models.PaymentType
	Locale        string
	Reference     string
	SessionDate   string
	ReceiptURL    string
}

// SendBookingConfirmation emails the customer in their locale.
func (s *EmailService) SendBookingConfirmation(d BookingEmailDetails) error {
	isPt := d.Locale == "pt"

	subject := "Payment Confirmation"
	if isPt {
		subject = "Confirmação de Pagamento"
	}

	// The booking fee secures the date and is non-refundable; say so on
	// DEPOSIT and FULL payments.
	policy := ""
	if d.PaymentType == models.PaymentTypeDeposit || d.PaymentType == models.PaymentTypeFull {
		if isPt {
			policy = `<p style="color:#666;font-size:12px;"><strong>Importante:</strong> A taxa de reserva não é reembolsável e garante a exclusividade da sua data.</p>`
		} else {
			policy = `<p style="color:#666;font-size:12px;"><strong>Important:</strong> The booking fee is non-refundable and secures your session date exclusively.</p>`
		}
	}

	sessionLine := ""
	if d.SessionDate != "" {
		label := "Session Date"
		if isPt {
			label = "Data da Sessão"
		}
		sessionLine = fmt.Sprintf("<p><strong>%s:</strong> %s</p>", label, formatDateForEmail(d.SessionDate, d.Locale))
	}

	receiptLine := ""
	if d.ReceiptURL != "" {
		label := "Receipt"
		if isPt {
			label = "Recibo"
		}
		receiptLine = fmt.Sprintf(`<p><strong>%s:</strong> <a href="%s">%s</a></p>`, label, d.ReceiptURL, d.ReceiptURL)
	}

	var body string
	if isPt {
		body = fmt.Sprintf(`
			<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
			  <h2>Olá, %s!</h2>
			  <p>Recebemos seu pagamento com sucesso. Muito obrigada!</p>
			  <div style="background-color:#f9f9f9;padding:15px;border-radius:5px;">
			    <p><strong>Pacote:</strong> %s</p>
			    %s
			    <p><strong>Valor Pago:</strong> %s</p>
			    <p><strong>Tipo de Pagamento:</strong> %s</p>
			    <p><strong>Referência:</strong> %s</p>
			    %s
			  </div>
			  <p>Em breve entrarei em contato para confirmarmos os próximos passos da sua sessão.</p>
			  %s
			</div>`,
			d.CustomerName, d.PackageName, sessionLine, d.Amount,
			formatPaymentType(d.PaymentType, "pt"), d.Reference, receiptLine, policy)
	} else {
		body = fmt.Sprintf(`
			<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
			  <h2>Hi %s!</h2>
			  <p>We have successfully received your payment. Thank you so much!</p>
			  <div style="background-color:#f9f9f9;padding:15px;border-radius:5px;">
			    <p><strong>Package:</strong> %s</p>
			    %s
			    <p><strong>Amount Paid:</strong> %s</p>
			    <p><strong>Payment Type:</strong> %s</p>
			    <p><strong>Reference:</strong> %s</p>
			    %s
			  </div>
			  <p>I will be in touch shortly to confirm the next steps for your session.</p>
			  %s
			</div>`,
			d.CustomerName, d.PackageName, sessionLine, d.Amount,
			formatPaymentType(d.PaymentType, "en"), d.Reference, receiptLine, policy)
	}

	return s.send(d.CustomerEmail, "", "Photofolio Studio", subject, body)
}

// SendAdminSaleNotification emails the studio owner about a new sale.
func (s *EmailService) SendAdminSaleNotification(d BookingEmailDetails) error {
	subject := fmt.Sprintf("New sale: %s (%s)", d.CustomerName, d.Amount)

	sessionLine := ""
	if d.SessionDate != "" {
		sessionLine = fmt.Sprintf("<li><strong>Session date:</strong> %s</li>", formatDateForEmail(d.SessionDate, "en"))
	}

	body := fmt.Sprintf(`
		<div style="font-family:Arial,sans-serif;">
		  <h2>New sale confirmed</h2>
		  <ul style="line-height:1.6;">
		    <li><strong>Client:</strong> %s (%s)</li>
		    <li><strong>Package:</strong> %s</li>
		    %s
		    <li><strong>Amount:</strong> %s</li>
		    <li><strong>Type:</strong> %s</li>
		    <li><strong>Client locale:</strong> %s</li>
		    <li><strong>Reference:</strong> %s</li>
		  </ul>
		  <p>Check the Stripe dashboard or the bookings list for full details.</p>
		</div>`,
		d.CustomerName, d.CustomerEmail, d.PackageName, sessionLine,
		d.Amount, d.PaymentType, strings.ToUpper(d.Locale), d.Reference)

	return s.send(s.user, "", "Photofolio System", subject, body)
}

func formatPaymentType(t models.PaymentType, locale string) string {
	labels := map[models.PaymentType]map[string]string{
		models.PaymentTypeDeposit: {"en": "Booking Fee", "pt": "Taxa de Reserva"},
		models.PaymentTypeFull:    {"en": "Full Payment", "pt": "Pagamento Total"},
		models.PaymentTypeBalance: {"en": "Remaining Balance", "pt": "Saldo Restante"},
	}
	if l, ok := labels[t]; ok {
		return l[locale]
	}
	return string(t)
}

func formatDateForEmail(raw, locale string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if t2, err2 := time.Parse("2006-01-02", raw); err2 == nil {
			t = t2
		} else {
			return raw
		}
	}
	if locale == "pt" {
		return t.Format("02/01/2006 15:04")
	}
	return t.Format("Monday, 2 January 2006 15:04")
}
