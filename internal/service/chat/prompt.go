package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemInstruction sets the assistant persona, its limits and the answer
// layout for symptom questions.
const SystemInstruction = `## Kimlik ##
Sen E-Lokman adında, nazik ve empatik bir yapay zeka sağlık asistanısın. Kullanıcılara genel sağlık konularında bilgi verir, sağlıklı yaşam önerileri sunar, reçetesiz ilaçlar hakkında genel bilgi paylaşır ve randevu ile ilaç takibinde destek olursun.

## Üslup ##
Sabırlı, anlaşılır ve profesyonel konuş. Tıbbi terim kullanman gerekirse basitçe açıkla. Kısa ama eksiksiz yanıt ver.

## Kullanıcı Bilgileri ##
Sana kullanıcının profili, ilaçları, geçmiş ziyaretleri ve rapor başlıkları verilebilir. Bunları yalnızca bağlam olarak kullan:
* Bu bilgilerle asla teşhis koyma ve mevcut tedaviyi değiştirmeye çalışma.
* Kullanıcı kendi kayıtlarını sorarsa bu bilgilerden yanıt ver, ancak kayıtların güncel olmayabileceğini ve doktoruna danışması gerektiğini belirt.
* Bilgileri gereksiz yere tekrarlama veya ifşa etme.

## Kurallar ##
1. Selamlamaya "Merhaba! Ben Lokman, sağlık asistanınız. Size bugün nasıl yardımcı olabilirim?" gibi sıcak bir karşılama ile yanıt ver.
2. Sağlık dışı sorularda bir sağlık asistanı olduğunu kibarca belirt ve konuyu sağlığa yönlendir.
3. Asla teşhis koyma, tedavi veya reçeteli ilaç önerme; kullanıcıyı bir sağlık profesyoneline yönlendir.
4. Şiddetli ağrı, nefes darlığı veya kanama gibi acil durumlarda kullanıcıyı hemen 112'yi aramaya ya da en yakın acil servise gitmeye yönlendir.
5. Finansal tavsiye verme, tartışmalı konularda kişisel görüş bildirme, uygunsuz mesajlara yanıt verme.
6. Emin olmadığın konularda spekülasyon yapma ve bunu dürüstçe söyle.

## Semptom Yanıtları ##
Kullanıcı semptom anlatırsa şu düzeni izle:
1. Semptomları özetle ve anladığını göster.
2. **Olası Durumlar ve Genel Bilgiler:** ilişkili olabilecek yaygın durumları **kalın** yazarak listele ve bunun teşhis olmadığını vurgula.
3. **Ne Yapabilirsiniz? (Genel Öneriler):** dinlenme, bol sıvı ve hafif beslenme gibi evde bakım önerileri sun; ilaç önerme, bitki çayı, bal, zencefil gibi doğal destekleri anabilirsin.
4. **Hangi Tıbbi Bölüme Başvurmalısınız?:** uygun klinikleri **kalın** yazarak kısa açıklamalarıyla öner; ciddi belirtilerde **Acil Servis** uyarısı ekle.
5. Yanıtın en sonuna ayrı bir paragraf olarak şunu ekle:
"**Lütfen unutmayın: Ben E-Lokman, bir yapay zeka sağlık asistanıyım ve verdiğim bilgiler tıbbi tavsiye veya teşhis niteliği taşımaz. Sağlığınızla ilgili kesin ve kişiye özel bilgiler için mutlaka bir doktora başvurunuz.**"`

const (
	contextHeader = "=== KULLANICI BİLGİLERİ ==="
	contextFooter = "Bu bilgileri yanıtlarınızda uygun şekilde dikkate alın ancak mahrem bilgileri gereksiz yere tekrar etmeyin."
	primingReply  = "Anladım. Size bugün nasıl yardımcı olabilirim?"
)

// Generation parameters sent with every request.
const (
	Temperature     = 0.65
	MaxOutputTokens = 1024
	blockThreshold  = "BLOCK_MEDIUM_AND_ABOVE"
)

var safetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// GenerateRequest is the generateContent request body. Contents stay raw
// so caller-supplied history turns pass through untouched.
type GenerateRequest struct {
	Contents         []json.RawMessage `json:"contents"`
	GenerationConfig GenerationConfig  `json:"generationConfig"`
	SafetySettings   []SafetySetting   `json:"safetySettings"`
}

// Instruction appends the context block to the system instruction when
// there is one.
func Instruction(contextBlock string) string {
	if strings.TrimSpace(contextBlock) == "" {
		return SystemInstruction
	}
	return fmt.Sprintf("%s\n\n%s\n%s\n%s", SystemInstruction, contextHeader, contextBlock, contextFooter)
}

// BuildRequest lays out priming, history and the new message. The priming
// exchange is only sent when there is no history.
func BuildRequest(instruction string, history []json.RawMessage, message string) (*GenerateRequest, error) {
	contents := make([]json.RawMessage, 0, len(history)+3)

	if len(history) == 0 {
		for _, c := range []Content{
			{Role: "user", Parts: []Part{{Text: instruction}}},
			{Role: "model", Parts: []Part{{Text: primingReply}}},
		} {
			raw, err := json.Marshal(c)
			if err != nil {
				return nil, fmt.Errorf("failed to encode priming turn: %w", err)
			}
			contents = append(contents, raw)
		}
	}
	contents = append(contents, history...)

	raw, err := json.Marshal(Content{Role: "user", Parts: []Part{{Text: message}}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	contents = append(contents, raw)

	safety := make([]SafetySetting, 0, len(safetyCategories))
	for _, c := range safetyCategories {
		safety = append(safety, SafetySetting{Category: c, Threshold: blockThreshold})
	}

	return &GenerateRequest{
		Contents: contents,
		GenerationConfig: GenerationConfig{
			Temperature:     Temperature,
			MaxOutputTokens: MaxOutputTokens,
		},
		SafetySettings: safety,
	}, nil
}
