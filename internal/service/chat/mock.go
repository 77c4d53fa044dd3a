package chat

import (
	"fmt"
	"strings"

	"github.com/elokman/health-api/internal/model"
)

// MockWarning accompanies every reply produced without the model.
const MockWarning = "Bu bir test yanıtıdır. Gerçek AI servisi için geçerli bir Gemini API anahtarı gereklidir."

type mockRule struct {
	keywords []string
	// reply receives the greeting prefix and returns the full reply.
	reply func(prefix, name string, cc *model.ChatContext) string
}

// mockRules are evaluated in order; the first keyword hit wins.
var mockRules = []mockRule{
	{
		keywords: []string{"merhaba", "selam", "selamlar"},
		reply: func(_, name string, _ *model.ChatContext) string {
			return fmt.Sprintf("Merhaba %s! Ben Lokman, sağlık asistanınız. Size bugün nasıl yardımcı olabilirim?", name)
		},
	},
	{
		keywords: []string{"ilaç", "ilac", "medication"},
		reply: func(prefix, _ string, cc *model.ChatContext) string {
			if len(cc.Medications) == 0 {
				return prefix + "Sistemde kayıtlı ilaç bulunmuyor. İlaçlarınızı sisteme ekleyebilir veya doktorunuza danışabilirsiniz."
			}
			return prefix + "Kayıtlarınıza göre şu anda şu ilaçları kullanıyorsunuz: " + medicationList(cc.Medications) +
				". Ancak güncel bilgi için doktorunuza danışmanızı öneririm."
		},
	},
	{
		keywords: []string{"rapor", "report", "test"},
		reply: func(prefix, _ string, cc *model.ChatContext) string {
			if len(cc.Reports) == 0 {
				return prefix + "Sistemde kayıtlı rapor bulunmuyor. Raporlarınızı sisteme yükleyebilirsiniz."
			}
			items := make([]string, 0, len(cc.Reports))
			for _, r := range cc.Reports {
				items = append(items, fmt.Sprintf("%s (%s)", r.Type, r.Status))
			}
			return prefix + "Son raporlarınız: " + strings.Join(items, ", ") + ". Detaylar için doktorunuzla görüşebilirsiniz."
		},
	},
	{
		keywords: []string{"yaş", "yas", "age"},
		reply: func(prefix, _ string, _ *model.ChatContext) string {
			return prefix + "Yaş bilginizi profil ayarlarınızdan güncelleyebilirsiniz. Bu yaş grubunda düzenli sağlık kontrolleri önemlidir."
		},
	},
	{
		keywords: []string{"randevu", "appointment"},
		reply: func(prefix, _ string, _ *model.ChatContext) string {
			return prefix + "Randevularınızı randevular sekmesinden takip edebilirsiniz. Yaklaşan randevularınız varsa size hatırlatırım."
		},
	},
}

const mockDefault = "Size nasıl yardımcı olabilirim? İlaçlarınız, randevularınız, raporlarınız veya genel sağlık konuları hakkında sorular sorabilirsiniz."

// MockReply builds a deterministic reply from the caller's own records.
func MockReply(message string, cc *model.ChatContext) string {
	name := "Kullanıcı"
	if cc.Profile != nil {
		name = orDefault(cc.Profile.FullName, name)
	}
	prefix := fmt.Sprintf("Merhaba %s! Ben Lokman, sağlık asistanınız. ", name)

	msg := lower(message)
	for _, rule := range mockRules {
		for _, kw := range rule.keywords {
			if strings.Contains(msg, kw) {
				return rule.reply(prefix, name, cc)
			}
		}
	}
	return prefix + mockDefault
}
