package analysis

import "fmt"

const promptTemplate = `You are an expert file analyst. Below is the content of a file and a user's question about it. Provide a concise and accurate answer based strictly on the provided file content.

--- FILE CONTENT ---
%s
--- END FILE CONTENT ---

USER QUESTION: "%s"

Your Analysis:`

// BuildPrompt wraps the file content and question in the analyst prompt.
func BuildPrompt(content, question string) string {
	return fmt.Sprintf(promptTemplate, content, question)
}
