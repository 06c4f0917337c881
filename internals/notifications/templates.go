package notifications

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	helper "rojasfit_backend/internals/helpers"
)

// ClaimMail is the data every payment email template renders from.
type ClaimMail struct {
	PaymentID      uint
	UserName       string
	UserEmail      string
	CourseTitles   []string
	TotalAmount    decimal.Decimal
	PaymentMethod  string
	Reference      string
	CoursesGranted int
}

var tmplFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "S/ " + d.StringFixed(2) },
}

var (
	receivedTmpl = template.Must(template.New("received").Funcs(tmplFuncs).Parse(`Hola **{{.UserName}}**,

Recibimos tu comprobante de pago #{{.PaymentID}} por **{{money .TotalAmount}}**.
Lo revisaremos en breve y te avisaremos por este medio.

{{range .CourseTitles}}- {{.}}
{{end}}`))

	adminTmpl = template.Must(template.New("admin").Funcs(tmplFuncs).Parse(`Nuevo pago pendiente #{{.PaymentID}}

- Cliente: {{.UserName}} ({{.UserEmail}})
- Monto: {{money .TotalAmount}}
- Método: {{.PaymentMethod}}{{if .Reference}}
- Referencia: {{.Reference}}{{end}}

{{range .CourseTitles}}- {{.}}
{{end}}`))

	confirmedTmpl = template.Must(template.New("confirmed").Funcs(tmplFuncs).Parse(`Hola **{{.UserName}}**,

Tu pago #{{.PaymentID}} fue **confirmado**. Ya puedes acceder a:

{{range .CourseTitles}}- {{.}}
{{end}}`))

	rejectedTmpl = template.Must(template.New("rejected").Funcs(tmplFuncs).Parse(`Hola **{{.UserName}}**,

No pudimos validar tu pago #{{.PaymentID}}. Si crees que es un error,
responde a este correo con tu comprobante.`))
)

func render(t *template.Template, data ClaimMail) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return helper.RenderMarkdown(buf.String()), nil
}

func build(t *template.Template, to, subject string, data ClaimMail) (Message, error) {
	html, err := render(t, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{strings.TrimSpace(to)}, Subject: subject, HTML: html}, nil
}

func ClaimReceived(d ClaimMail) (Message, error) {
	return build(receivedTmpl, d.UserEmail, fmt.Sprintf("Recibimos tu pago #%d", d.PaymentID), d)
}

func AdminNewClaim(adminEmail string, d ClaimMail) (Message, error) {
	return build(adminTmpl, adminEmail, fmt.Sprintf("Nuevo pago pendiente #%d", d.PaymentID), d)
}

func ClaimConfirmed(d ClaimMail) (Message, error) {
	return build(confirmedTmpl, d.UserEmail, fmt.Sprintf("Pago #%d confirmado", d.PaymentID), d)
}

func ClaimRejected(d ClaimMail) (Message, error) {
	return build(rejectedTmpl, d.UserEmail, fmt.Sprintf("Pago #%d rechazado", d.PaymentID), d)
}
