// Package render classifies storefront submissions and turns them into the
// text block sent to LINE and reused for every mail channel.
package render

import (
	"html"
	"math"
	"math/big"
	"net/mail"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"notification-hub/relay/pkg/domain"
)

const (
	orderHeading  = "🛒 มีคำสั่งซื้อใหม่"
	creditHeading = "🪙 มีคำขอเติมเครดิตใหม่"
	placeholder   = "-"
	noProof       = "ไม่มี"
)

var printer = message.NewPrinter(language.English)

// Rendered is the formatted message for one submission.
type Rendered struct {
	Kind domain.Kind
	Text string
}

// Classify returns KindCredit when the submission is explicitly tagged as a
// credit request, or carries an amount without a product. Everything else,
// including an amount together with a product, is an order.
func Classify(s domain.Submission) domain.Kind {
	tagged := s.Type.String() == string(domain.KindCredit)
	amountOnly := s.Amount.Present() && !s.Product.Present()
	if tagged || amountOnly {
		return domain.KindCredit
	}
	return domain.KindOrder
}

// Render classifies the submission and builds its text.
func Render(s domain.Submission) Rendered {
	kind := Classify(s)
	var lines []string
	if kind == domain.KindCredit {
		lines = creditLines(s)
	} else {
		lines = orderLines(s)
	}
	return Rendered{Kind: kind, Text: joinLines(lines)}
}

func creditLines(s domain.Submission) []string {
	customer := s.Email.Or(s.Name.Or(placeholder))
	return []string{
		creditHeading,
		"👤 ลูกค้า: " + customer,
		"💰 จำนวน: " + FormatAmount(s.Amount.Float()) + " เครดิต",
		"🔗 หลักฐาน: " + s.ProofImageURL.Or(noProof),
	}
}

func orderLines(s domain.Submission) []string {
	lines := []string{
		orderHeading,
		"👤 ลูกค้า: " + s.Name.Or(placeholder),
		"📦 สินค้า: " + s.Product.Or(placeholder),
		"🔢 จำนวน: " + s.Qty.Or(placeholder),
		"💰 ยอดรวม: " + s.Total.Or(placeholder),
	}
	if s.Note.Present() {
		lines = append(lines, "📝 หมายเหตุ: "+s.Note.String())
	}
	return lines
}

// FormatAmount formats n with thousands grouping and at most three fraction
// digits, e.g. 1500 -> "1,500". Halves round away from zero on the shortest
// decimal form of n, so 1.0005 -> "1.001". Infinities render as "∞".
func FormatAmount(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "∞"
	case math.IsInf(n, -1):
		return "-∞"
	case math.IsNaN(n):
		return "NaN"
	}
	return printer.Sprintf("%v", number.Decimal(roundHalfUp(n, 3), number.MaxFractionDigits(3)))
}

// roundHalfUp rounds the shortest decimal representation of n to places
// fraction digits, halves away from zero.
func roundHalfUp(n float64, places int) float64 {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(n, 'g', -1, 64))
	if !ok {
		return n
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))

	q, m := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	m.Abs(m).Lsh(m, 1)
	if m.Cmp(r.Denom()) >= 0 {
		if r.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	f, _ := new(big.Rat).SetFrac(q, scale).Float64()
	return f
}

func joinLines(lines []string) string {
	kept := lines[:0]
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

// Subject is the first line of a rendered text.
func Subject(text string) string {
	first, _, _ := strings.Cut(text, "\n")
	return first
}

// HTML escapes the text and maps each newline to a <br>.
func HTML(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}

// Mail builds the message body shared by every secondary channel.
func Mail(r Rendered) domain.MailMessage {
	return domain.MailMessage{
		Subject: Subject(r.Text),
		Text:    r.Text,
		HTML:    HTML(r.Text),
	}
}

// Envelope addresses the rendered message to the shop admin. Replies go to
// the customer when the submission carries an email address.
func Envelope(r Rendered, s domain.Submission, adminEmail, from string) domain.Envelope {
	return domain.Envelope{
		Recipients: []string{adminEmail},
		From:       from,
		ReplyTo:    replyTo(s.Email, from),
		Message:    Mail(r),
		Source:     "storefront-" + string(r.Kind),
		Contact:    s.Phone.String(),
	}
}

// replyTo keeps the customer address only when it parses as a single mail
// address; anything else falls back to the sender.
func replyTo(email domain.Value, from string) string {
	raw := email.String()
	if raw == "" || strings.ContainsAny(raw, "\r\n") {
		return from
	}
	if _, err := mail.ParseAddress(raw); err != nil {
		return from
	}
	return raw
}
