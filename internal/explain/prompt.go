package explain

import (
	"fmt"
	"strings"
)

const explanationSystemPrompt = `You help parents describe what they notice in a sick child. You rewrite clinical symptom names in plain, everyday words. You never diagnose, reassure or give treatment advice.`

func buildExplanationUserMessage(symptom string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Symptom: %s\n", symptom))
	b.WriteString("\nExamples:\n")
	for _, ex := range []string{"Stridor", "Otorrhea (ear discharge)", "Tachypnea (rapid breathing)"} {
		b.WriteString(fmt.Sprintf("- %s: %s\n", ex, layTable[ex]))
	}

	b.WriteString(`
Instructions:
Explain the symptom in one sentence of at most 20 words, in the style of the examples.
Describe what a parent would see or hear. Avoid medical jargon and do not name diseases.`)

	return b.String()
}
