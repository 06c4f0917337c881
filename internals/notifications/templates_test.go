package notifications

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestClaimTemplates(t *testing.T) {
	d := ClaimMail{
		PaymentID:     9,
		UserName:      "Ana",
		UserEmail:     " ana@x.com ",
		CourseTitles:  []string{"Glúteos 30 días", "Abs <pro>"},
		TotalAmount:   decimal.RequireFromString("149.9"),
		PaymentMethod: "bank_transfer",
		Reference:     "OP-123",
	}

	tests := []struct {
		name        string
		build       func() (Message, error)
		wantTo      string
		wantSubject string
		wantBody    []string
	}{
		{
			name:        "received lists courses and total",
			build:       func() (Message, error) { return ClaimReceived(d) },
			wantTo:      "ana@x.com",
			wantSubject: "Recibimos tu pago #9",
			wantBody:    []string{"<strong>Ana</strong>", "S/ 149.90", "<li>Glúteos 30 días</li>"},
		},
		{
			name:        "admin notice includes reference",
			build:       func() (Message, error) { return AdminNewClaim("admin@rojasfit.com", d) },
			wantTo:      "admin@rojasfit.com",
			wantSubject: "Nuevo pago pendiente #9",
			wantBody:    []string{"OP-123", "bank_transfer"},
		},
		{
			name:        "confirmed",
			build:       func() (Message, error) { return ClaimConfirmed(d) },
			wantTo:      "ana@x.com",
			wantSubject: "Pago #9 confirmado",
			wantBody:    []string{"<strong>confirmado</strong>"},
		},
		{
			name:        "rejected",
			build:       func() (Message, error) { return ClaimRejected(d) },
			wantTo:      "ana@x.com",
			wantSubject: "Pago #9 rechazado",
			wantBody:    []string{"No pudimos validar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := tt.build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if len(msg.To) != 1 || msg.To[0] != tt.wantTo {
				t.Errorf("To = %v, want [%s]", msg.To, tt.wantTo)
			}
			if msg.Subject != tt.wantSubject {
				t.Errorf("Subject = %q, want %q", msg.Subject, tt.wantSubject)
			}
			if strings.Contains(msg.HTML, "<pro>") {
				t.Errorf("raw html from course title leaked into body:\n%s", msg.HTML)
			}
			for _, frag := range tt.wantBody {
				if !strings.Contains(msg.HTML, frag) {
					t.Errorf("HTML missing %q:\n%s", frag, msg.HTML)
				}
			}
		})
	}
}
