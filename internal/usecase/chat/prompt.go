package chat

import "strings"

// Prompt template text. The ordering — system rules, context block, user
// question, output instructions — is load-bearing: generation-model
// adherence is sensitive to prompt structure, so treat it as a wire format.
const (
	systemInstruction = `You are the Eaglesoak Realty property assistant. ` +
		`Answer the user's question using only the context provided below. ` +
		`If the context does not contain the information needed, say so explicitly instead of guessing. ` +
		`Be concise and factual, include a short recommendation, and keep the answer under 220 words.`

	noContextLine = "No property context is available for this question."

	outputInstruction = `Answer in plain text without markdown formatting. ` +
		`End with a one-sentence recommendation.`
)

// buildPrompt wraps the assembled context lines with the fixed instruction
// frame and the literal user question.
func buildPrompt(contextLines []string, question string) string {
	var b strings.Builder

	b.WriteString(systemInstruction)
	b.WriteString("\n\nContext:\n")
	if len(contextLines) == 0 {
		b.WriteString(noContextLine)
		b.WriteString("\n")
	} else {
		for _, line := range contextLines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(outputInstruction)

	return b.String()
}
