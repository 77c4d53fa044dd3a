package chat

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elokman/health-api/internal/model"
)

func strPtr(s string) *string { return &s }

func TestIsGreeting(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"merhaba", true},
		{"  Merhaba  ", true},
		{"selam!", true},
		{"hi there", true},
		{"iyi akşamlar", true},
		{"Günaydın", true},
		{"merhabalar nasılsın", false},
		{"history of my meds", false},
		{"ilaçlarım neler?", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGreeting(tt.msg))
		})
	}
}

func TestKeyValid(t *testing.T) {
	assert.False(t, KeyValid(""))
	assert.False(t, KeyValid("short-key"))
	assert.False(t, KeyValid("your_gemini_api_key_goes_here"))
	assert.True(t, KeyValid("AIzaSyA-0123456789abcdefghijkl"))
}

func TestAge(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	birth := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	assert.Nil(t, Age(nil, now))
	assert.Equal(t, 34, *Age(birth(1990, 6, 15), now))
	assert.Equal(t, 33, *Age(birth(1990, 6, 16), now))
	assert.Equal(t, 33, *Age(birth(1990, 7, 1), now))
	assert.Equal(t, 0, *Age(birth(2024, 1, 1), now))
	assert.Nil(t, Age(birth(2025, 1, 1), now))
}

func sampleContext() *model.ChatContext {
	age := 40
	return &model.ChatContext{
		Profile: &model.ChatProfile{FullName: strPtr("Ayşe Yılmaz"), Gender: strPtr("kadın"), Age: &age},
		Medications: []*model.Medication{
			{Name: "Aspirin", Dose: "100mg"},
			{Name: "Metformin", Dose: ""},
		},
		HealthHistory: []*model.HealthHistoryEntry{
			{VisitType: "Kontrol", HospitalName: "Şehir Hastanesi", Department: strPtr("Dahiliye")},
		},
		Reports: []*model.Report{
			{Type: "Kan Tahlili", Status: "normal"},
		},
	}
}

func TestContextBlock(t *testing.T) {
	block := ContextBlock(sampleContext())

	assert.Contains(t, block, "Kullanıcı Profili: Ayşe Yılmaz, 40 yaşında, Cinsiyet: kadın\n")
	assert.Contains(t, block, "Kullandığı İlaçlar: Aspirin (100mg), Metformin (Doz belirtilmemiş)\n")
	assert.Contains(t, block, "Son Sağlık Geçmişi: Kontrol - Dahiliye (Şehir Hastanesi)\n")
	assert.Contains(t, block, "Son Raporları: Kan Tahlili - normal (Belirtilmemiş)\n")

	assert.Empty(t, ContextBlock(&model.ChatContext{}))
}

func TestInstruction(t *testing.T) {
	assert.Equal(t, SystemInstruction, Instruction("  "))

	got := Instruction("Kullanıcı Profili: Ayşe\n")
	assert.Contains(t, got, "=== KULLANICI BİLGİLERİ ===\nKullanıcı Profili: Ayşe")
	assert.True(t, len(got) > len(SystemInstruction))
}

func TestMockReply(t *testing.T) {
	cc := sampleContext()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"greeting", "selam, ilaçlarım?", "Merhaba Ayşe Yılmaz! Ben Lokman, sağlık asistanınız. Size bugün nasıl yardımcı olabilirim?"},
		{"medications", "İlaçlarım neler", "Aspirin (100mg), Metformin (Doz belirtilmemiş)"},
		{"reports", "son raporlarım", "Son raporlarınız: Kan Tahlili (normal)"},
		{"age", "yaşım için öneri", "Yaş bilginizi profil ayarlarınızdan"},
		{"appointments", "randevu ne zaman", "Randevularınızı randevular sekmesinden"},
		{"default", "uyku düzeni", "Size nasıl yardımcı olabilirim?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, MockReply(tt.message, cc), tt.want)
		})
	}
}

func TestMockReply_NoRecords(t *testing.T) {
	cc := &model.ChatContext{}

	assert.Contains(t, MockReply("ilaç", cc), "Sistemde kayıtlı ilaç bulunmuyor")
	assert.Contains(t, MockReply("report", cc), "Sistemde kayıtlı rapor bulunmuyor")
	assert.Contains(t, MockReply("ilaç", cc), "Merhaba Kullanıcı!")
}

func TestBuildRequest(t *testing.T) {
	t.Run("first turn is primed", func(t *testing.T) {
		req, err := BuildRequest("SYS", nil, "başım ağrıyor")
		require.NoError(t, err)
		require.Len(t, req.Contents, 3)

		var first, second, last Content
		require.NoError(t, json.Unmarshal(req.Contents[0], &first))
		require.NoError(t, json.Unmarshal(req.Contents[1], &second))
		require.NoError(t, json.Unmarshal(req.Contents[2], &last))
		assert.Equal(t, "user", first.Role)
		assert.Equal(t, "SYS", first.Parts[0].Text)
		assert.Equal(t, "model", second.Role)
		assert.Equal(t, "başım ağrıyor", last.Parts[0].Text)

		assert.Equal(t, 0.65, req.GenerationConfig.Temperature)
		assert.Equal(t, 1024, req.GenerationConfig.MaxOutputTokens)
		assert.Len(t, req.SafetySettings, 4)
	})

	t.Run("history is passed through verbatim", func(t *testing.T) {
		turn := json.RawMessage(`{"role":"model","parts":[{"text":"önceki"}],"extra":true}`)
		req, err := BuildRequest("SYS", []json.RawMessage{turn}, "devam")
		require.NoError(t, err)
		require.Len(t, req.Contents, 2)
		assert.JSONEq(t, string(turn), string(req.Contents[0]))
	})
}

func TestChatRequestHistory(t *testing.T) {
	req := model.ChatRequest{ConversationHistory: json.RawMessage(`[{"role":"user","parts":[]}]`)}
	assert.Len(t, req.History(), 1)

	req.ConversationHistory = json.RawMessage(`{"role":"user"}`)
	assert.Nil(t, req.History())

	req.ConversationHistory = nil
	assert.Nil(t, req.History())
}

func TestAssemblerSkipsMissingProfile(t *testing.T) {
	repos := newRepos(t)
	cc := NewAssembler(repos).Assemble(context.Background(), 999)

	assert.Nil(t, cc.Profile)
	assert.Empty(t, cc.Medications)
}
