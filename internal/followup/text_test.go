package followup

import "testing"

func TestPlainText(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"plain passthrough", "Konu: A\nMetin", "Konu: A\nMetin"},
		{"paragraphs", "<p>Konu: A</p><p>Sayın Yetkili,<br>Lütfen</p>", "Konu: A\nSayın Yetkili,\nLütfen"},
		{"list", "<ul><li>Bir</li><li>İki</li></ul>", "- Bir\n- İki"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PlainText(tc.in); got != tc.want {
				t.Errorf("PlainText = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSplitSubject(t *testing.T) {
	cases := []struct {
		in, subject, body string
	}{
		{"Konu: Eksik Belge\n\nGövde", "Eksik Belge", "Gövde"},
		{"**Konu:** Hatırlatma\nGövde", "Hatırlatma", "Gövde"},
		{"Subject: Reminder\nBody", "Reminder", "Body"},
		{"Sayın Yetkili,\nGövde", Subject, "Sayın Yetkili,\nGövde"},
		{"Konu:\nGövde", Subject, "Gövde"},
	}
	for _, tc := range cases {
		s, b := SplitSubject(tc.in)
		if s != tc.subject || b != tc.body {
			t.Errorf("SplitSubject(%q) = %q, %q", tc.in, s, b)
		}
	}
}
