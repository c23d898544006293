package ai

import (
	"fmt"
	"strings"
)

// MentorTemperature is the sampling temperature of the mentor chat
const MentorTemperature = 0.7

const mentorSystemInstruction = `Você é um amigo cristão leal e sábio.
NÃO use linguagem excessivamente feminina ou masculina ("amiga" ou "campeão"), use termos neutros ou o nome da pessoa.
Responda com profundidade bíblica mas simplicidade.
Seu objetivo é caminhar junto, ouvir e aconselhar.`

const jsonOnlyInstruction = "Responda apenas com JSON válido, sem texto adicional."

func buildVersePrompt(verse string) string {
	return fmt.Sprintf(`Explique o seguinte versículo bíblico: %q.

A resposta deve seguir estritamente este formato JSON:
{
  "explanation": "Uma explicação teológica clara e acessível (máx 3 frases)",
  "context": "Contexto histórico breve (quem escreveu, para quem, época)",
  "application": "Como aplicar isso na vida prática hoje",
  "related": "Uma referência de outro versículo que complementa este"
}`, verse)
}

func buildJournalPrompt(entry string) string {
	return fmt.Sprintf(`O usuário escreveu no diário: %q.
Aja como um amigo cristão maduro.
Gere uma resposta curta (1-2 frases) encorajadora, sem usar gênero (amigo/amiga). Use tom sábio e acolhedor.`, entry)
}

func buildDevotionalPrompt(themes []string) string {
	return fmt.Sprintf(`Crie um devocional PROFUNDO e COMPLETO sobre um destes temas: %s.

O conteúdo deve ser substancial (cerca de 300 palavras), não apenas um resumo.

Formato JSON estrito:
{
  "title": "Um título cativante",
  "verse": "O versículo chave (texto e referência)",
  "importance": "Explique POR QUE este tema é vital para a vida espiritual (1 parágrafo)",
  "content": "A reflexão profunda. Divida em 3 parágrafos claros. Use linguagem inspiradora, teológica mas acessível.",
  "prayer": "Uma oração em primeira pessoa"
}`, strings.Join(themes, ", "))
}

func buildPlanPrompt(areas []string) string {
	return fmt.Sprintf(`Crie um plano de restauração espiritual de 7 dias focado em: %s.
Para cada dia, forneça um título, um conteúdo breve de leitura e uma tarefa prática MUITO SIMPLES e rápida (máx 5 minutos).

Responda APENAS com este JSON:
{
  "days": [
    {
      "day": 1,
      "title": "Título do Dia 1",
      "content": "Texto de reflexão do dia (2 frases)",
      "task": "Tarefa prática extremamente simples e rápida (ex: orar o salmo 23, ligar para alguém)"
    }
  ]
}
O array "days" deve conter exatamente 7 dias, do dia 1 ao dia 7.`, strings.Join(areas, ", "))
}
