package ai

import (
	"strings"
	"unicode/utf8"

	"github.com/benvon/devotional/internal/models"
)

// Fallback content returned when the generative service is not configured
// or a call fails. Every value is complete in the fields its kind requires.
const (
	MentorOfflineReply = "Estou operando em modo offline no momento. Lembre-se: Deus está com você agora mesmo. O que te aflige? Tente orar ou ler um Salmo, Ele te ouvirá."
	MentorFailureReply = "Minha conexão falhou momentaneamente, mas Deus está aqui. Respire fundo e tente novamente em alguns instantes."

	MentorGreeting = "Oi! A paz do Senhor! 👋 \nEu sou seu amigo de jornada. Como você está se sentindo hoje? Pode me contar tudo! ☕"

	JournalOfflineReflection = "Que bom que você registrou isso. Deus está vendo seu coração."
	// JournalFailureReflection means no reflection is shown
	JournalFailureReflection = ""

	// DefaultImportance fills a devotional whose importance field came back empty
	DefaultImportance = "Entender este princípio é fundamental para construir uma fé inabalável e viver o propósito de Deus."

	// MinDevotionalContentLength is the shortest acceptable devotional body, in characters
	MinDevotionalContentLength = 50
)

// VerseOfflineExplanation is returned when no credential is configured
var VerseOfflineExplanation = models.VerseExplanation{
	Explanation: "No momento não consigo acessar a base de dados teológica online.",
	Context:     "Verifique sua conexão ou a configuração da chave API.",
	Application: "Enquanto isso, ore pedindo ao Espírito Santo que ilumine este texto ao seu coração.",
	Related:     "Salmos 119:105",
}

// VerseFailureExplanation is returned when a call fails or is unparseable
var VerseFailureExplanation = models.VerseExplanation{
	Explanation: "Não foi possível analisar este versículo agora.",
	Context:     "Tente novamente mais tarde.",
	Application: "Medite na palavra e confie na direção de Deus.",
	Related:     "Salmos 119:105",
}

// FallbackDevotional is the devotional served when generation is unavailable
var FallbackDevotional = models.Devotional{
	Title:      "A Paz que Excede o Entendimento",
	Verse:      "Filipenses 4:7",
	Importance: "Em um mundo cheio de ansiedade e ruído, a paz de Deus não é apenas um sentimento, é uma guarda poderosa para a nossa mente.",
	Content: "Muitas vezes, procuramos a paz quando as circunstâncias estão calmas, mas a Bíblia nos apresenta uma paz diferente: uma paz que funciona no meio da tempestade.\n\n" +
		"Quando Paulo escreveu aos Filipenses, ele não estava em um palácio, mas preso. Ainda assim, ele falava de alegria e paz. Isso nos ensina que a paz de Deus não é a ausência de problemas, mas a presença de Cristo em meio a eles.\n\n" +
		"Essa paz 'guarda' nossos corações como uma sentinela. Ela impede que o medo e a ansiedade tomem conta do nosso ser. Hoje, não peça apenas para que Deus mude as situações, peça para que a Paz dEle inunde seu interior, mudando como você vê a situação.",
	Prayer: "Senhor, eu recebo a Tua paz hoje. Guarda minha mente e meu coração, pois confio que Tu estás no controle de tudo.",
}

var fallbackPlanDays = [models.PlanLength]models.PlanDay{
	{Day: 1, Title: "Reconhecendo o Lugar", Content: "O primeiro passo para a cura é saber onde dói. Deus quer tratar a raiz.", Task: "Escreva em um papel uma coisa que tem tirado sua paz e ore entregando-a."},
	{Day: 2, Title: "O Poder do Perdão", Content: "A falta de perdão é como beber veneno esperando que o outro morra.", Task: "Ore abençoando alguém que te feriu no passado."},
	{Day: 3, Title: "Identidade Restaurada", Content: "Você não é o que dizem, você é quem Deus diz que é: Amado e Escolhido.", Task: "Olhe no espelho e diga: 'Eu sou filho(a) amado(a) de Deus'."},
	{Day: 4, Title: "Silenciando a Mente", Content: "A ansiedade grita, mas o Espírito Santo sussurra. Precisamos parar para ouvir.", Task: "Fique 5 minutos em total silêncio apenas ouvindo sua respiração."},
	{Day: 5, Title: "Gratidão como Arma", Content: "A gratidão muda a frequência do nosso coração da falta para a abundância.", Task: "Liste 3 coisas simples pelas quais você é grato hoje."},
	{Day: 6, Title: "Servindo ao Próximo", Content: "Às vezes, a cura vem quando tiramos o foco de nós mesmos e abençoamos outros.", Task: "Envie uma mensagem de encorajamento para um amigo."},
	{Day: 7, Title: "Novo Começo", Content: "As misericórdias do Senhor se renovam hoje. O passado ficou para trás.", Task: "Faça uma oração consagrando sua próxima semana a Deus."},
}

// FallbackPlan returns a fresh copy of the generic seven-day plan
func FallbackPlan() models.PlanContent {
	days := make([]models.PlanDay, len(fallbackPlanDays))
	copy(days, fallbackPlanDays[:])
	return models.PlanContent{Days: days}
}

// ValidDevotional is the devotional validity gate. Content must be at least
// MinDevotionalContentLength characters and the title, verse and prayer present.
func ValidDevotional(d models.Devotional) bool {
	if utf8.RuneCountInString(strings.TrimSpace(d.Content)) < MinDevotionalContentLength {
		return false
	}
	return notBlank(d.Title, d.Verse, d.Prayer)
}

// ValidVerseExplanation requires all four fields
func ValidVerseExplanation(v models.VerseExplanation) bool {
	return notBlank(v.Explanation, v.Context, v.Application, v.Related)
}

// ValidPlan requires exactly seven days, each with title, content and task
func ValidPlan(p models.PlanContent) bool {
	if len(p.Days) != models.PlanLength {
		return false
	}
	for _, d := range p.Days {
		if !notBlank(d.Title, d.Content, d.Task) {
			return false
		}
	}
	return true
}

func notBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
